package summarizer

import "fmt"

const categoryExamples = `Good examples: "NATO & Defense", "Human Rights", "Housing Market", "Local Elections", "Climate Policy", "Tech Industry", "Immigration Law", "Public Health", "Criminal Justice", "Energy Policy", "Trade & Tariffs", "Labor Rights"

Bad examples: "Politics" (too vague), "News" (meaningless), "World" (too broad), "Business" (too generic)`

func articlePrompt(title, body string) string {
	return fmt.Sprintf(`You are simplifying news articles for everyday readers. Your task is to make complex news stories clear and accessible.

Transform this article:

1. REWRITE THE TITLE: Make it clear, direct, and easy to understand. Remove jargon and complex phrases.

2. SUMMARIZE THE ARTICLE: Write a 60-80 word summary using simple, conversational English. Focus on the key points that matter most to readers.

3. CATEGORIZE THE ARTICLE: Pick a specific category (1-3 words) that captures what the story is really about. Be specific, not generic.

%s

Format your response EXACTLY like this:
TITLE: [your transformed title here]
SUMMARY: [your 60-80 word summary here]
CATEGORY: [your 1-3 word category here]

Original Title: %s

Article Content:
%s

Remember: Use simple vocabulary, short sentences, and a conversational tone. Make it easy for anyone to understand.`, categoryExamples, title, body)
}

func categoryPrompt(title, summary string) string {
	return fmt.Sprintf(`You are categorizing news article summaries. Based on the title and summary below, provide a specific category (1-3 words) that captures what the story is really about.

%s

Title: %s

Summary: %s

Respond with ONLY the category name, nothing else. For example: Climate Policy`, categoryExamples, title, summary)
}
