package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTranslationProvider is a mock implementation of TranslationProvider
type MockTranslationProvider struct {
	mock.Mock
}

func (m *MockTranslationProvider) Name() string {
	return "mock"
}

func (m *MockTranslationProvider) TranslateText(ctx context.Context, text, source, target string) (string, error) {
	args := m.Called(ctx, text, source, target)
	return args.String(0), args.Error(1)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, lang, text string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[lang+"|"+text]
	return v, ok
}

func (c *memoryCache) Set(_ context.Context, lang, text, translated string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[lang+"|"+text] = translated
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func TestIdentityTranslator(t *testing.T) {
	in := []string{"one", "two"}
	out := IdentityTranslator{}.Translate(context.Background(), in, "hi")

	assert.Equal(t, in, out)
	out[0] = "changed"
	assert.Equal(t, "one", in[0])
}

func TestTranslationService_EnglishIsIdentity(t *testing.T) {
	provider := new(MockTranslationProvider)
	svc := NewTranslationService(provider, nil, TranslationServiceConfig{}, quietLogger())

	in := []string{"Your TSH level is normal.", "Your creatinine level is high."}
	assert.Equal(t, in, svc.Translate(context.Background(), in, "en"))
	assert.Equal(t, in, svc.Translate(context.Background(), in, " EN "))
	provider.AssertNotCalled(t, "TranslateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTranslationService_TranslatesInOrder(t *testing.T) {
	provider := new(MockTranslationProvider)
	provider.On("TranslateText", mock.Anything, "a", "en", "fr").Return("A-fr", nil)
	provider.On("TranslateText", mock.Anything, "b", "en", "fr").Return("B-fr", nil)
	provider.On("TranslateText", mock.Anything, "c", "en", "fr").Return("C-fr", nil)

	svc := NewTranslationService(provider, nil, TranslationServiceConfig{MaxConcurrency: 2}, quietLogger())
	got := svc.Translate(context.Background(), []string{"a", "b", "c"}, "fr")

	assert.Equal(t, []string{"A-fr", "B-fr", "C-fr"}, got)
	provider.AssertExpectations(t)
	assert.Equal(t, int64(3), svc.Stats().ProviderCalls)
}

func TestTranslationService_PerStringFallback(t *testing.T) {
	provider := new(MockTranslationProvider)
	provider.On("TranslateText", mock.Anything, "a", "en", "de").Return("A-de", nil)
	provider.On("TranslateText", mock.Anything, "b", "en", "de").Return("", errors.New("connection refused"))
	provider.On("TranslateText", mock.Anything, "c", "en", "de").Return("   ", nil)

	svc := NewTranslationService(provider, nil, TranslationServiceConfig{}, quietLogger())
	got := svc.Translate(context.Background(), []string{"a", "b", "c", ""}, "de")

	assert.Equal(t, []string{"A-de", "b", "c", ""}, got)
	assert.Equal(t, int64(2), svc.Stats().Fallbacks)
}

func TestTranslationService_UnreachableProviderKeepsEverything(t *testing.T) {
	provider := new(MockTranslationProvider)
	provider.On("TranslateText", mock.Anything, mock.Anything, "en", "hi").Return("", errors.New("dial tcp: unreachable"))

	svc := NewTranslationService(provider, nil, TranslationServiceConfig{}, quietLogger())
	in := []string{"first", "second", "third"}
	got := svc.Translate(context.Background(), in, "hi")

	require.Len(t, got, len(in))
	assert.Equal(t, in, got)
}

func TestTranslationService_Timeout(t *testing.T) {
	provider := new(MockTranslationProvider)
	provider.On("TranslateText", mock.Anything, "slow", "en", "es").
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			<-ctx.Done()
		}).
		Return("", context.DeadlineExceeded)

	svc := NewTranslationService(provider, nil, TranslationServiceConfig{Timeout: 20 * time.Millisecond}, quietLogger())

	start := time.Now()
	got := svc.Translate(context.Background(), []string{"slow"}, "es")

	assert.Equal(t, []string{"slow"}, got)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestTranslationService_UsesCache(t *testing.T) {
	provider := new(MockTranslationProvider)
	provider.On("TranslateText", mock.Anything, "hello", "en", "it").Return("ciao", nil).Once()

	cache := newMemoryCache()
	svc := NewTranslationService(provider, cache, TranslationServiceConfig{}, quietLogger())

	assert.Equal(t, []string{"ciao"}, svc.Translate(context.Background(), []string{"hello"}, "it"))
	assert.Equal(t, []string{"ciao"}, svc.Translate(context.Background(), []string{"hello"}, "it"))

	provider.AssertNumberOfCalls(t, "TranslateText", 1)
	assert.Equal(t, int64(1), svc.Stats().CacheHits)
	assert.Equal(t, "mock", svc.ProviderName())
}
