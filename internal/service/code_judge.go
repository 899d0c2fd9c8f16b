package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// pistonRequest — тело запроса Piston-совместимого execute API
type pistonRequest struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Files    []pistonFile `json:"files"`
	Stdin    string       `json:"stdin"`
}

type pistonFile struct {
	Content string `json:"content"`
}

// pistonResponse — тело ответа execute API
type pistonResponse struct {
	Run struct {
		Stdout string `json:"stdout"`
		Stderr string `json:"stderr"`
		Code   int    `json:"code"`
	} `json:"run"`
	Message string `json:"message"`
}

// PistonJudge исполняет код через Piston-совместимый REST API.
// Версия "*" просит сервис выбрать последнюю доступную версию языка.
type PistonJudge struct {
	baseURL string
	client  *http.Client
}

// NewPistonJudge создает новый клиент execute-сервиса
func NewPistonJudge(baseURL string, timeout time.Duration) *PistonJudge {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PistonJudge{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Execute запускает код с указанным stdin и возвращает stdout программы.
// Ненулевой код выхода или stderr считаются ошибкой исполнения,
// чтобы сломанное решение не сравнивалось с эталоном как пустой вывод.
func (j *PistonJudge) Execute(ctx context.Context, language, code, stdin string) (string, error) {
	if language == "" {
		language = "python"
	}

	payload, err := json.Marshal(pistonRequest{
		Language: language,
		Version:  "*",
		Files:    []pistonFile{{Content: code}},
		Stdin:    stdin,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode execute request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build execute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read execute response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("execute service returned %d: %s", resp.StatusCode, string(body))
	}

	var result pistonResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode execute response: %w", err)
	}

	if result.Run.Code != 0 {
		return "", fmt.Errorf("program exited with code %d: %s", result.Run.Code, result.Run.Stderr)
	}

	return result.Run.Stdout, nil
}
