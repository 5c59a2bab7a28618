package ingestpub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDisabledReturnsNilPublisher(t *testing.T) {
	p, err := New(Config{Enabled: false})
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestNilPublisherPublishIsNoop(t *testing.T) {
	var p *Publisher
	err := p.Publish(context.Background(), ReingestedEvent{ContractID: "local123"})
	assert.NoError(t, err)
}

func TestNilPublisherCloseIsNoop(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.Close())
}
