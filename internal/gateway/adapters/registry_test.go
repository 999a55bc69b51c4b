package adapters

import (
	"errors"
	"testing"

	"github.com/sspkit/razorgate/internal/gateway/domain"
)

type fakeFactory struct {
	name string
}

func (f *fakeFactory) Provider() string { return f.name }

func (f *fakeFactory) NewClient(cfg domain.ClientConfig) (domain.Client, error) {
	return nil, domain.ErrInvalidConfig
}

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	registry := NewRegistry(&fakeFactory{name: "Razorpay"})

	if !registry.ProviderExists("razorpay") {
		t.Error("expected lowercase lookup to match")
	}
	if !registry.ProviderExists("  RAZORPAY  ") {
		t.Error("expected trimmed uppercase lookup to match")
	}
	if registry.ProviderExists("stripe") {
		t.Error("unexpected provider match")
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	registry := NewRegistry(&fakeFactory{name: "razorpay"})

	_, err := registry.NewClient("stripe", domain.ClientConfig{Provider: "stripe"})
	if !errors.Is(err, domain.ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestRegistrySkipsNilAndUnnamedFactories(t *testing.T) {
	registry := NewRegistry(nil, &fakeFactory{name: ""}, &fakeFactory{name: "razorpay"})

	providers := registry.Providers()
	if len(providers) != 1 || providers[0] != "razorpay" {
		t.Errorf("providers = %v, want [razorpay]", providers)
	}
}
