package llm

import (
	"context"
	"fmt"

	"github.com/Morwran/yagpt"
)

var yandexModel = yagpt.YaModelLite

// YandexClient has no function-calling support: tool declarations are
// ignored and every turn is a final answer.
type YandexClient struct {
	ya       yagpt.YaGPTFace
	iamToken string
}

// NewYandex exchanges the OAuth token for an IAM token once; the IAM token
// is reused for every request of the session.
func NewYandex(oauthToken, folderID string) (*YandexClient, error) {
	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, fmt.Errorf("yandex folder %q: %w", folderID, err)
	}
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("yandex iam: %w", err)
	}
	token, err := iam.Create()
	if err != nil {
		return nil, fmt.Errorf("yandex iam token: %w", err)
	}
	return &YandexClient{ya: ya, iamToken: token.IamToken}, nil
}

func (c *YandexClient) Stream(ctx context.Context, r Request, onDelta DeltaFunc) (Response, error) {
	var messages []yagpt.Message
	if r.System != "" {
		messages = append(messages, yagpt.Message{Role: RoleSystem, Content: r.System})
	}
	for _, m := range r.Messages {
		if (m.Role != RoleUser && m.Role != RoleAssistant) || m.Content == "" {
			continue
		}
		messages = append(messages, yagpt.Message{Role: m.Role, Content: m.Content})
	}

	resp, err := c.ya.CompletionWithCtx(ctx, c.iamToken, messages)
	if err != nil {
		return Response{}, fmt.Errorf("yagpt completion failed: %w", err)
	}
	if resp == nil || len(resp.Alternatives) == 0 {
		return Response{}, fmt.Errorf("yagpt returned empty response")
	}
	out := Response{Content: resp.Alternatives[0].Message.Content, Model: yandexModel}
	out.PromptTokens = int(resp.Usage.InputTextTokens)
	out.CompletionTokens = int(resp.Usage.CompletionTokens)
	out.TotalTokens = int(resp.Usage.TotalTokens)
	if out.Content != "" {
		if err := onDelta(out.Content); err != nil {
			return Response{}, err
		}
	}
	return out, nil
}
