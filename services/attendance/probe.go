package attendance

import (
	"context"
	"fmt"
	"time"

	"attendance-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Probe checks whether the portal answers plain HTTP requests at all, it
// never logs in.
type Probe struct {
	client *resty.Client
	url    string
}

func NewProbe(portalURL string, timeout time.Duration, tel telemetry.API) Probe {
	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", browserUserAgent)
	client.SetTimeout(timeout)
	telemetry.InstrumentResty(client, "attendance/probe/http", telemetry.NewScopedAPI("probe", tel))

	return Probe{client: client, url: portalURL}
}

func (p Probe) Check(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Probe:Check")
	defer span.End()

	res, err := p.client.R().
		SetContext(ctx).
		Get(p.url)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %w", ErrPortalUnreachable, err)
	}
	if res.StatusCode() >= 500 {
		return fmt.Errorf("%w: portal responded with %s", ErrPortalUnreachable, res.Status())
	}
	return nil
}
