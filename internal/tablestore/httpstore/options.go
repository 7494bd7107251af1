package httpstore

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithTimeout bounds a single round trip, including reading the response.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be > 0")
		}
		c.http.SetTimeout(d)
		return nil
	}
}

// WithLogger logs every round trip at debug level.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) error {
		c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			log.Debug().
				Str("method", resp.Request.Method).
				Str("url", resp.Request.URL).
				Int("status_code", resp.StatusCode()).
				Dur("elapsed", resp.Time()).
				Msg("tablestore round trip")
			return nil
		})
		return nil
	}
}

// WithRestyClient replaces the underlying resty client. The base URL is set
// on it afterwards.
func WithRestyClient(rc *resty.Client) Option {
	return func(c *Client) error {
		if rc == nil {
			return fmt.Errorf("resty client is nil")
		}
		c.http = rc
		return nil
	}
}
