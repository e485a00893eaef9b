package health

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// UpstreamChecker treats the product API as ready when its collection
// resource answers with a success status.
type UpstreamChecker struct {
	productsURL string
	client      *http.Client
}

func NewUpstreamChecker(productsURL string, client *http.Client) Checker {
	if productsURL == "" {
		return nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &UpstreamChecker{productsURL: productsURL, client: client}
}

func (c *UpstreamChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "upstream", Healthy: true}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.productsURL, nil)
	if err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res.Healthy = false
		res.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return res
}

type RedisChecker struct {
	client redis.UniversalClient
}

func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "redis", Healthy: true}
	if c.client == nil {
		res.Healthy = false
		res.Error = "redis not configured"
		return res
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}
