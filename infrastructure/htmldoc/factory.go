package htmldoc

import (
	"context"
	"time"

	"e2e_locators/domain/interfaces"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Factory hands out static engines sharing one HTTP client
type Factory struct {
	client *resty.Client
	logger *logrus.Logger
}

// NewFactory creates a factory whose engines fetch documents with the given timeout
func NewFactory(timeout time.Duration, logger *logrus.Logger) *Factory {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "e2e-locators/static").
		SetHeader("Accept", "text/html,application/xhtml+xml")
	return &Factory{client: client, logger: logger}
}

func (f *Factory) Name() string {
	return "static"
}

func (f *Factory) NewEngine(ctx context.Context) (interfaces.Engine, error) {
	return NewEngine(f.client, f.logger), nil
}

func (f *Factory) Close() error {
	return nil
}

var _ interfaces.EngineFactory = (*Factory)(nil)
