// Package comm talks to the SIP proxy's management interface. The
// shell holds exactly one live Handler per active instance and swaps
// it wholesale on instance switch.
package comm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/siptools/sipcli/pkg/config"
	"github.com/siptools/sipcli/pkg/logger"
)

// Handler is an open channel to one proxy instance's management
// interface. Calls are paced so scripted invocations cannot flood the
// proxy's management worker.
type Handler interface {
	Call(ctx context.Context, method string, params any) (gjson.Result, error)
	Target() string
	Close() error
}

// Initialize opens a handler for the currently active instance.
func Initialize(cfg *config.Config) (Handler, error) {
	commType := cfg.Get("comm_type")
	switch commType {
	case "http":
		return newHTTPHandler(cfg.Get("url")), nil
	case "datagram":
		return newDatagramHandler(cfg.Get("datagram_target"))
	default:
		return nil, fmt.Errorf("unsupported comm_type %q", commType)
	}
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

func encodeRequest(method string, params any) ([]byte, error) {
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", method, err)
	}
	return body, nil
}

func decodeReply(method string, body []byte) (gjson.Result, error) {
	reply := gjson.ParseBytes(body)
	if errObj := reply.Get("error"); errObj.Exists() {
		return gjson.Result{}, fmt.Errorf("%s: %s (code %d)",
			method, errObj.Get("message").String(), errObj.Get("code").Int())
	}
	return reply.Get("result"), nil
}

type httpHandler struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

func newHTTPHandler(url string) *httpHandler {
	return &httpHandler{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(20), 5),
	}
}

func (h *httpHandler) Call(ctx context.Context, method string, params any) (gjson.Result, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, err
	}
	body, err := encodeRequest(method, params)
	if err != nil {
		return gjson.Result{}, err
	}
	logger.DebugCF("comm", "management call", map[string]any{"method": method, "target": h.url})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: reading reply: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("%s: server replied %s", method, resp.Status)
	}
	return decodeReply(method, data)
}

func (h *httpHandler) Target() string { return h.url }

func (h *httpHandler) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

type datagramHandler struct {
	target  string
	conn    net.Conn
	limiter *rate.Limiter
}

func newDatagramHandler(target string) (*datagramHandler, error) {
	conn, err := net.Dial("udp", target)
	if err != nil {
		return nil, fmt.Errorf("opening datagram target %s: %w", target, err)
	}
	return &datagramHandler{
		target:  target,
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(20), 5),
	}, nil
}

func (h *datagramHandler) Call(ctx context.Context, method string, params any) (gjson.Result, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, err
	}
	body, err := encodeRequest(method, params)
	if err != nil {
		return gjson.Result{}, err
	}
	logger.DebugCF("comm", "management call", map[string]any{"method": method, "target": h.target})

	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := h.conn.SetDeadline(deadline); err != nil {
		return gjson.Result{}, err
	}
	if _, err := h.conn.Write(body); err != nil {
		return gjson.Result{}, fmt.Errorf("%s: %w", method, err)
	}

	buf := make([]byte, 65535)
	n, err := h.conn.Read(buf)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: reading reply: %w", method, err)
	}
	return decodeReply(method, buf[:n])
}

func (h *datagramHandler) Target() string { return h.target }

func (h *datagramHandler) Close() error { return h.conn.Close() }
