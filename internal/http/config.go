package httpclient

import (
	"net/http"
	"net/url"
	"time"
)

//grpc design pattern(func opton pattern) for config mgt

type HttpFuncOption func(*HttpClientWrapper)

type HttpClientWrapper struct {
	client         *http.Client
	contextTimeout time.Duration
}

func defaultHttpConfig() HttpClientWrapper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxConnsPerHost = 100
	t.MaxIdleConnsPerHost = 100
	t.IdleConnTimeout = 90 * time.Second
	t.DisableKeepAlives = false

	return HttpClientWrapper{
		client:         &http.Client{Transport: t},
		contextTimeout: 25 * time.Second,
	}
}

func WithCtxTimeout(ctxTimeout time.Duration) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		httpConfig.contextTimeout = ctxTimeout
	}
}

func WithMaxIdleConns(max int) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		if transport, ok := httpConfig.client.Transport.(*http.Transport); ok {
			transport.MaxIdleConns = max
		}
	}
}

func WithMaxConnsPerHost(max int) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		if transport, ok := httpConfig.client.Transport.(*http.Transport); ok {
			transport.MaxConnsPerHost = max
		}
	}
}

func WithMaxIdleConnsPerHost(max int) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		if transport, ok := httpConfig.client.Transport.(*http.Transport); ok {
			transport.MaxIdleConnsPerHost = max
		}
	}
}

func WithIdleConnTimeout(timeout time.Duration) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		if transport, ok := httpConfig.client.Transport.(*http.Transport); ok {
			transport.IdleConnTimeout = timeout * time.Second
		}
	}
}

func WithDisableKeepAlives(disable bool) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		if transport, ok := httpConfig.client.Transport.(*http.Transport); ok {
			transport.DisableKeepAlives = disable
		}
	}
}

func WithProxySetup(proxyAddress *url.URL) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		if transport, ok := httpConfig.client.Transport.(*http.Transport); ok {
			transport.Proxy = http.ProxyURL(proxyAddress)
		}
	}
}

type HttpClient struct {
	HttpClientWrapper
}

// Constructor to create an instance of the HttpClientWrapper with connection pool setup
func CreateHttpClientInstance(httpConfig ...HttpFuncOption) *HttpClient {
	d := defaultHttpConfig()
	for _, fn := range httpConfig {
		fn(&d)
	}
	return &HttpClient{d}
}
