package domain

// Factory API upstream constants. These are fixed by the Factory CLI
// protocol and are part of the outbound request contract.
const (
	// FactoryAPIBaseURL is the upstream LLM API host.
	FactoryAPIBaseURL = "https://api.factory.ai/api/llm"

	// FactoryUserAgent is the client user agent sent on every request.
	FactoryUserAgent = "factory-cli/0.32.1"

	// FactoryClientHeader marks requests as coming from the CLI client.
	FactoryClientHeader = "x-factory-client"
	// FactoryClientValue is the fixed marker header value.
	FactoryClientValue = "cli"
)

// EndpointType selects which upstream API path a credential targets.
type EndpointType string

const (
	// EndpointAnthropic targets the Anthropic Messages API.
	EndpointAnthropic EndpointType = "anthropic"
	// EndpointOpenAI targets the OpenAI Responses API.
	EndpointOpenAI EndpointType = "openai"
	// EndpointComm targets the OpenAI Chat Completions API.
	EndpointComm EndpointType = "comm"
)

// Endpoint paths under FactoryAPIBaseURL.
const (
	endpointPathAnthropic = "/a/v1/messages"
	endpointPathOpenAI    = "/o/v1/responses"
	endpointPathComm      = "/o/v1/chat/completions"
)

// Valid returns true if the endpoint type is a known variant.
func (e EndpointType) Valid() bool {
	switch e {
	case EndpointAnthropic, EndpointOpenAI, EndpointComm:
		return true
	default:
		return false
	}
}

// Path returns the API path for the endpoint type. Unknown types fall back
// to the Anthropic path, matching the default endpoint.
func (e EndpointType) Path() string {
	switch e {
	case EndpointOpenAI:
		return endpointPathOpenAI
	case EndpointComm:
		return endpointPathComm
	default:
		return endpointPathAnthropic
	}
}

// BaseURL returns the fully resolved upstream URL for the endpoint type.
func (e EndpointType) BaseURL() string {
	return FactoryAPIBaseURL + e.Path()
}
