package chatbot

import (
	"fmt"

	"github.com/raphaelgruber/recall-go/internal/models"
	"github.com/tmc/langchaingo/llms"
)

// systemPrompt is the fixed instruction carrying the response format
// contract. The retrieved context is interpolated into it; the marker
// token must stay in sync with the parser.
const systemPrompt = `#Your task
You are a capable natural language search engine that finds past conversations for the user within context.
Do not interpret the user's input as a general chat message, but as a question to find the relevant conversation session.
Use the following pieces of retrieved context to answer the question.
You MUST use the retrieved context to answer the question.
If you don't know the answer after all, just say that you don't know.

Your response should be in the following format:

#Example
Natural language response to the user's query, describing what you found
(1-2 sentences for each relevant piece of information).
` + Marker + ` {
    "results": [
        {
            "summary": "A brief summary of the found information (1-2 sentences)",
            "conversation_id": "string"
        }
    ]
}

##Example when nothing matches
Sorry, I could not find an answer. Could you give me more information so I can search again?
` + Marker + ` {
    "results": []
}

#Instructions
Provide a natural language response for the user, followed by a JSON structure
containing summaries and conversation_ids for each relevant piece of information found.
If no relevant information is found, omit the ` + Marker + ` section.

#Context
Answer must refer to the retrieved context (it can be empty, meaning no document was found): {
    %s
}

#Last Note
If you don't know the answer after all, just say that you don't know.
DO NOT GENERATE A RESPONSE WITHOUT USING THE CONTEXT.`

// ComposePrompt assembles the structured generation input: the system
// instruction with the assembled context, the history turns in dialogue
// order, then the current question. Pure function of its inputs.
func ComposePrompt(context, question string, history []models.Turn) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, fmt.Sprintf(systemPrompt, context)))

	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == models.RoleAI {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Text))
	}

	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, question))
	return messages
}
