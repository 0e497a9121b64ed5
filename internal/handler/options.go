package handler

type OptionFunc func(opt *Options)

type Options struct {
	messages Messages
}

// Messages are the user-facing texts put in the lookup envelope.
type Messages struct {
	OrganizationMissing string
	InvalidFormat       string
	InternalProblem     string
	RegistryUnavailable string
	UnexpectedResponse  string
}

func DefaultMessages() Messages {
	return Messages{
		OrganizationMissing: "The organization number does not exist in the Brønnøysund Register Centre.",
		InvalidFormat:       "The organization number must consist of exactly 9 digits.",
		InternalProblem:     "An internal problem occurred. Please try again later.",
		RegistryUnavailable: "The Brønnøysund Register Centre is not available right now. Please try again later.",
		UnexpectedResponse:  "The Brønnøysund Register Centre returned an unexpected response.",
	}
}

// WithMessages overrides the default texts; empty fields keep their default.
func WithMessages(m Messages) OptionFunc {
	return func(opt *Options) {
		if m.OrganizationMissing != "" {
			opt.messages.OrganizationMissing = m.OrganizationMissing
		}
		if m.InvalidFormat != "" {
			opt.messages.InvalidFormat = m.InvalidFormat
		}
		if m.InternalProblem != "" {
			opt.messages.InternalProblem = m.InternalProblem
		}
		if m.RegistryUnavailable != "" {
			opt.messages.RegistryUnavailable = m.RegistryUnavailable
		}
		if m.UnexpectedResponse != "" {
			opt.messages.UnexpectedResponse = m.UnexpectedResponse
		}
	}
}

func defaultHandlerOptions() *Options {
	return &Options{messages: DefaultMessages()}
}
