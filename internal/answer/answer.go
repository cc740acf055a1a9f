// Package answer turns a retrieved row subset into a model-written reply.
// This is the second of the two model calls in a chat turn; it depends on
// the retrieval call's output, so the two are sequential by design.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/findsight/findsight-cli/internal/ai"
	"github.com/findsight/findsight-cli/internal/retrieval"
	"github.com/findsight/findsight-cli/internal/session"
	"github.com/findsight/findsight-cli/internal/utils"
)

const (
	answerTemperature = 0.3
	// historyExchanges bounds how many past user/assistant pairs ride along.
	historyExchanges = 3
	// contextTokenBudget guards the serialized subset against blowing the
	// prompt when rows carry very long finding texts.
	contextTokenBudget = 12000
)

const systemPromptTemplate = `You are an expert production efficiency analyst assistant.
You help engineers analyse production findings and annotations to identify improvement opportunities.

The user has loaded a findings dataset. Summary of the full dataset:
%s

Answer the user's question from the relevant findings provided with it.
Be specific, cite asset names and findings where relevant. Think like an engineer.
If the data is insufficient to answer, say so clearly and suggest what additional data would help.`

// Answerer produces answers over retrieved context.
type Answerer struct {
	rt          ai.Runtime
	model       string
	maxTokens   int
	contextRows int
}

// New builds an Answerer. maxTokens bounds the reply length; contextRows
// bounds how many retrieved rows are serialized into the prompt (the
// serializer clamps it to its own hard ceiling).
func New(rt ai.Runtime, model string, maxTokens, contextRows int) *Answerer {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	if contextRows <= 0 {
		contextRows = retrieval.SerializeMaxRows
	}
	return &Answerer{rt: rt, model: model, maxTokens: maxTokens, contextRows: contextRows}
}

// Answer builds the final prompt from the session summary, recent history,
// the serialized subset and the question, and asks the model.
func (a *Answerer) Answer(ctx context.Context, sess *session.Session, query string, res *retrieval.Result) (string, error) {
	contextText := retrieval.SerializeRows(sess.Table.Columns, res.Rows, a.contextRows)
	contextText = utils.TruncateToTokenLimit(contextText, contextTokenBudget)

	var user strings.Builder
	fmt.Fprintf(&user, "Question: %s\n\n", query)
	fmt.Fprintf(&user, "Relevant findings (retrieved via %s, subset of %d total rows):\n", res.Strategy, len(sess.Table.Rows))
	user.WriteString(contextText)

	messages := make([]ai.Message, 0, historyExchanges*2+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: fmt.Sprintf(systemPromptTemplate, sess.Summary)})
	messages = append(messages, sess.RecentMessages(historyExchanges)...)
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: user.String()})

	resp, err := a.rt.Generate(ctx, ai.GenerateRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: answerTemperature,
		MaxTokens:   a.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("answer generation: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("model returned an empty answer")
	}
	return text, nil
}
