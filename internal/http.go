package internal

import (
	"context"
	"fmt"
	"go-katextag/pkg"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
)

func NewHandler(p *pkg.Pipeline) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ct := r.Header.Get("Content-Type")
		if !strings.HasPrefix(ct, "multipart/form-data") {
			http.Error(w, "Content-Type must be multipart/form-data", http.StatusUnsupportedMediaType)
			return
		}

		if err := r.ParseMultipartForm(10 << 20); err != nil {
			http.Error(w, fmt.Sprintf("Error parsing form: %v", err), http.StatusBadRequest)
			return
		}

		if math, ok := r.MultipartForm.Value["math"]; ok && len(math) > 0 {
			display, _ := strconv.ParseBool(r.FormValue("display"))
			out, err := p.RenderMath(math[0], display)
			if err != nil {
				http.Error(w, fmt.Sprintf("error rendering math: %v", err), http.StatusUnprocessableEntity)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(out))
			return
		}

		var (
			data map[string]interface{}
			err  error
		)

		if yamlFile, _, yfErr := r.FormFile("data_yaml"); yfErr == nil {
			defer yamlFile.Close()
			data, err = pkg.DecodeYaml(yamlFile)
			if err != nil {
				http.Error(w, fmt.Sprintf("Invalid YAML: %v", err), http.StatusBadRequest)
				return
			}
		} else if yfErr != http.ErrMissingFile {
			http.Error(w, fmt.Sprintf("Error reading YAML file: %v", yfErr), http.StatusBadRequest)
			return
		} else if dataJson := r.FormValue("data"); dataJson != "" {
			data, err = pkg.DecodeJson(strings.NewReader(dataJson))
			if err != nil {
				http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
				return
			}
		}

		tmplFile, _, err := r.FormFile("template")
		if err != nil {
			http.Error(w, fmt.Sprintf("Error reading file: %v", err), http.StatusBadRequest)
			return
		}
		defer tmplFile.Close()

		out, err := p.Process(tmplFile, data)
		if err != nil {
			slog.Warn("render failed", "error", err)
			http.Error(w, fmt.Sprintf("error rendering page: %v", err), http.StatusUnprocessableEntity)
			return
		}

		contentType := "text/plain; charset=utf-8"
		if p.Config.Markdown == pkg.MarkdownGoldmark || p.Config.Markdown == pkg.MarkdownBlackfriday {
			contentType = "text/html; charset=utf-8"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(out)))
		_, _ = w.Write(out)
	})
}

func Serve(addr string, p *pkg.Pipeline, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Handler:      NewHandler(p),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		slog.Info("starting server", "address", listener.Addr().String())
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			slog.Error("server error occurred", "error", err)
		}
	}()

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	slog.Info("shutting down server gracefully", "shutdownTimeout", shutdownTimeout)

	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	return nil
}
