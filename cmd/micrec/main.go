// Command micrec records microphone audio with an Enter-gated record/stop
// loop and optionally submits the capture to a running service instance.
//
//	micrec -o capture.wav
//	micrec -o capture.wav -server http://localhost:8000
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/skillsenselab/audio-ai-api/internal/capture"
	"github.com/skillsenselab/audio-ai-api/internal/logger"
)

func main() {
	output := "capture.wav"
	serverURL := ""
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				i++
				output = args[i]
			}
		case "-server", "--server":
			if i+1 < len(args) {
				i++
				serverURL = args[i]
			}
		default:
			fmt.Fprintf(os.Stderr, "unknown flag %q\n", args[i])
			os.Exit(2)
		}
	}

	log := logger.NewDefault("micrec")

	if err := run(output, serverURL, log); err != nil {
		log.Fatal("recording failed", logger.ErrorFields("micrec", err))
	}
}

func run(output, serverURL string, log *logger.Logger) error {
	rec, err := capture.NewRecorder()
	if err != nil {
		return err
	}
	defer rec.Close()

	stdin := bufio.NewReader(os.Stdin)

	fmt.Println("Press ENTER to start recording...")
	if _, err := stdin.ReadString('\n'); err != nil {
		return err
	}

	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- rec.Record(output, stop)
	}()

	fmt.Println("Recording... Press ENTER again to stop.")
	if _, err := stdin.ReadString('\n'); err != nil {
		close(stop)
		<-done
		return err
	}
	close(stop)

	if err := <-done; err != nil {
		return err
	}
	log.Info("capture saved", logger.Fields("path", output))

	if serverURL == "" {
		return nil
	}
	return submit(serverURL, output, log)
}

// submit posts the capture to the service's audio-to-text endpoint and
// prints the transcription.
func submit(serverURL, path string, log *logger.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio_file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	writer.Close()

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Post(serverURL+"/api/audio-to-text", writer.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return err
	}

	log.Info("transcription received")
	fmt.Println(parsed.Text)
	return nil
}
