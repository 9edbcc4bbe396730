// Package llm provides the text-completion capability used by classification,
// goal synthesis, translation and chat. It supports OpenAI, Anthropic and Gemini
// providers, with retry logic, rate limiting, and response caching layered on top.
package llm
