package auth

import (
	"errors"

	"lib-photo-session-go/config"
	"lib-photo-session-go/util"
)

// AccountKind selects which identity configuration a sign-in uses.
type AccountKind int

const (
	Business AccountKind = iota
	Consumer
	ConsumerInteractive
)

var AccountKinds = []AccountKind{Business, Consumer, ConsumerInteractive}

var ErrUnknownAccountKind = errors.New("unknown account kind")

func (k AccountKind) String() string {
	switch k {
	case Business:
		return "business"
	case Consumer:
		return "consumer"
	case ConsumerInteractive:
		return "consumer_interactive"
	default:
		return "unknown"
	}
}

// ParseAccountKind accepts the kind names in any case, with spaces or dashes
// in place of underscores.
func ParseAccountKind(s string) (AccountKind, error) {
	switch util.NormalizeString(s) {
	case "business", "aad":
		return Business, nil
	case "consumer", "msa":
		return Consumer, nil
	case "consumer_interactive", "device_code":
		return ConsumerInteractive, nil
	default:
		return 0, wrapServiceError("cannot parse "+s, ErrUnknownAccountKind)
	}
}

// ConfigFor returns the provider configuration used by kind. Both consumer
// kinds share one configuration.
func ConfigFor(kind AccountKind, cfg config.AppConfig) config.ProviderConfig {
	if kind == Business {
		return cfg.Business
	}
	return cfg.Consumer
}
