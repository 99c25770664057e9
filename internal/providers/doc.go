// Package providers implements the Completer interface for each supported AI
// provider.
//
// Supported providers: Azure AI Foundry, Anthropic (Claude), OpenAI (GPT),
// Google (Gemini), and Ollama / LMStudio for local models.
//
// All providers share a common retry helper with exponential back-off and
// rate-limit handling. Base URLs are overridable via environment variables so
// that tests can redirect calls to local httptest servers without making live
// API requests.
//
// Use [New] to obtain a Completer by provider name and model string, or
// [Detect] to pick the first provider configured in the environment.
package providers
