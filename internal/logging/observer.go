package logging

import (
	"github.com/gyeh/intake-recon/internal/extract"
	"github.com/gyeh/intake-recon/internal/record"
	"go.uber.org/zap"
)

// NotSpecified is logged for a referring physician label with no name.
const NotSpecified = "Not Specified"

// Observer reports extraction discoveries for one document as log notices.
func Observer(l *zap.Logger, document string) extract.Observer {
	return extract.ObserverFunc(func(d extract.Discovery) {
		value := d.Value
		if !d.Specified {
			value = NotSpecified
		}

		switch d.Field {
		case record.ReferringPhysician:
			l.Info("Referring Physician found",
				zap.String("document", document),
				zap.String("referring_physician", value))
		case record.InsurancePolicy:
			l.Info("Policy found",
				zap.String("document", document),
				zap.String("policy", value))
		default:
			l.Debug("Field found",
				zap.String("document", document),
				zap.String("field", d.Field.String()),
				zap.String("value", value))
		}
	})
}
