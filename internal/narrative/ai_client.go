// Package narrative は位置情報の観光ナラティブ生成機能を提供する。
// OpenAI互換のchat completions APIを呼び出し、結果をgeohash単位でキャッシュする。
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hitoshi/rediscover/internal/model"
)

// defaultChatEndpoint はOpenAI chat completions APIのエンドポイント。
const defaultChatEndpoint = "https://api.openai.com/v1/chat/completions"

// defaultModel は生成に使うモデル名。
const defaultModel = "gpt-4o-mini"

// Narrative はAIが生成した観光ナラティブの各項目。
type Narrative struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	History      string   `json:"history"`
	Culture      string   `json:"culture"`
	Attractions  []string `json:"attractions"`
	Climate      string   `json:"climate"`
	Demographics string   `json:"demographics"`
	Economy      string   `json:"economy"`
}

// Generator は位置からナラティブを生成するインターフェース。
type Generator interface {
	Generate(ctx context.Context, location *model.Location) (*Narrative, error)
}

// AIClient はOpenAI互換APIのクライアント。
type AIClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	model      string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewAIClient はAIClientの新しいインスタンスを生成する。
// modelNameが空の場合はdefaultModelを使う。
func NewAIClient(httpClient *http.Client, logger *slog.Logger, apiKey, modelName string) *AIClient {
	if modelName == "" {
		modelName = defaultModel
	}
	return &AIClient{
		httpClient: httpClient,
		logger:     logger,
		apiKey:     apiKey,
		model:      modelName,
		endpoint:   defaultChatEndpoint,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate は位置の観光ナラティブを生成する。
func (c *AIClient) Generate(ctx context.Context, location *model.Location) (*Narrative, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: buildPrompt(location)},
		},
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("リクエストJSONの生成に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("chat completions APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("chat completions APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("chat completions APIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("chat completions APIが候補を返しませんでした")
	}

	var narrative Narrative
	if err := json.Unmarshal([]byte(result.Choices[0].Message.Content), &narrative); err != nil {
		return nil, fmt.Errorf("ナラティブJSONのパースに失敗しました: %w", err)
	}

	return &narrative, nil
}

// buildPrompt は位置の住所要素からプロンプトを組み立てる。
// 出力はJSONオブジェクトに固定し、項目ごとに解説を生成させる。
func buildPrompt(location *model.Location) string {
	var b strings.Builder

	b.WriteString("You are an expert tour guide and a historian, with a talent for bringing places to life through storytelling.\n")
	b.WriteString("Your task is to create an engaging and informative guide for a visitor exploring a new location.\n\n")
	b.WriteString("The tone should be conversational, enthusiastic, and easy to read, as if you are walking alongside the visitor.\n\n")
	b.WriteString("Your narrative should cover the following aspects of the location:\n\n")
	b.WriteString("1. History: key historical events, figures, and stories that have shaped this area. What are its origins?\n")
	b.WriteString("2. Culture: cultural fabric of the place. Local traditions, art forms, music, or culinary scenes that a visitor might experience.\n")
	b.WriteString("3. Economy: what has historically driven the economy here, and what drives it today.\n")
	b.WriteString("4. Demographics: communities that have called this place home over the years.\n")
	b.WriteString("5. Climate: how the weather changes throughout the year and what a visitor should expect.\n")
	b.WriteString("6. Attractions: key attractions, landmarks, or hidden gems that a visitor should not miss.\n\n")
	b.WriteString("Remember that the visitor is standing in the location you are describing.\n")
	b.WriteString("They are more interested in the specific street, locality and neighbourhood than the city as a whole.\n")
	b.WriteString("Do not include generic information that can be found in a Wikipedia article.\n\n")
	b.WriteString("Respond with a single JSON object with these keys:\n")
	b.WriteString(`"name" (a short display name for the spot), "description" (a one-paragraph overview), `)
	b.WriteString(`"history", "culture", "economy", "demographics", "climate" (strings), `)
	b.WriteString("and \"attractions\" (an array of short strings).\n\n")
	b.WriteString("The location you will be describing (where the visitor is standing) is:\n")
	b.WriteString("Street: " + location.Street + " " + location.Neighborhood + "\n")
	b.WriteString("Locality: " + location.Locality + "\n")
	b.WriteString("City: " + location.City + ", " + location.Country + "\n")
	b.WriteString("Location: " + strconv.FormatFloat(location.Latitude, 'f', -1, 64) + ", " + strconv.FormatFloat(location.Longitude, 'f', -1, 64) + "\n")

	return b.String()
}

// compile-time interface check
var _ Generator = (*AIClient)(nil)
