// driver/redis.go
//
// Thin shim over github.com/redis/go-redis/v9 that satisfies the
// Executor interface used by the repository package and adds pipeline
// batching plus OpenTelemetry spans.
//
// Usage:
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	conn := driver.NewRedisConn(rdb)
//	repo := repository.New(conn, reg)
//	err := repo.Put(ctx, user)
package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "sdborm.driver"

// Executor runs one raw command.
type Executor interface {
	Do(ctx context.Context, args ...interface{}) (any, error)
}

// Pipeliner is implemented by executors that can send several commands in
// one round trip. Each result slot holds either the reply or its error.
type Pipeliner interface {
	Pipeline(ctx context.Context, cmds [][]interface{}) ([]any, error)
}

// RedisConn implements Executor and Pipeliner on top of a go-redis client.
type RedisConn struct {
	client redis.UniversalClient
}

// NewRedisConn wraps an existing go-redis client (single node, cluster or
// failover).
func NewRedisConn(c redis.UniversalClient) *RedisConn { return &RedisConn{client: c} }

// Do satisfies the Executor interface.
func (rc *RedisConn) Do(ctx context.Context, args ...interface{}) (any, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "redis.do")
	defer span.End()

	start := time.Now()
	res, err := rc.client.Do(ctx, args...).Result()
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("redis.cmd", stringifyCmd(args)),
		attribute.Float64("redis.duration_ms", float64(elapsed.Milliseconds())),
	)
	if err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

// Pipeline executes a batch of commands and returns raw results.
func (rc *RedisConn) Pipeline(ctx context.Context, cmds [][]interface{}) ([]any, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "redis.pipeline")
	defer span.End()
	span.SetAttributes(attribute.Int("redis.pipeline.size", len(cmds)))

	pipe := rc.client.Pipeline()
	results := make([]*redis.Cmd, len(cmds))
	for i, cmd := range cmds {
		results[i] = pipe.Do(ctx, cmd...)
	}
	// Exec reports the first failed command; server replies that are errors
	// stay in their result slots below.
	if _, err := pipe.Exec(ctx); err != nil && !isReplyErr(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make([]any, len(results))
	for i, r := range results {
		if err := r.Err(); err != nil {
			out[i] = err
		} else {
			out[i] = r.Val()
		}
	}
	return out, nil
}

// Close closes the underlying client.
func (rc *RedisConn) Close() error { return rc.client.Close() }

// ----------------------------------------------------------------------------
// internal helpers
// ----------------------------------------------------------------------------

func isReplyErr(err error) bool {
	var rerr redis.Error
	return errors.As(err, &rerr)
}

func stringifyCmd(args []interface{}) string {
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(toString(a))
	}
	return sb.String()
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
