package leaves

type SystemPrompt string

func (Module) SystemPrompt() SystemPrompt {
	return `You are a precise data extractor.
Analyze the text chunk. Does it contain information relevant to the user's query?
Return JSON: { "found": boolean, "answer": "extracted info or reasoning" }
If not found, set "found": false.
Use only the text chunk. Do not answer from general knowledge.`
}

func userMessage(query, chunk string) string {
	return "Query: " + query + "\n\nText Chunk: " + chunk
}
