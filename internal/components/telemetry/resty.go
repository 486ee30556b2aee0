package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
)

type exchangeKey struct{}

type exchange struct {
	id      uint64
	started time.Time
}

func exchangeOf(req *resty.Request) exchange {
	ex, _ := req.Context().Value(exchangeKey{}).(exchange)
	return ex
}

// InstrumentResty reports every exchange the client makes with its status and
// how long it took. Retries keep the id of their first attempt. Headers and
// bodies are never reported.
func InstrumentResty(client *resty.Client, tel API) {
	var seq atomic.Uint64

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if ex := exchangeOf(req); ex.id != 0 {
			tel.ReportDebug(report_resty_request, KV{"request", ex.id}, KV{"attempt", req.Attempt}, req.Method, req.URL)
			return nil
		}
		ex := exchange{id: seq.Add(1), started: time.Now()}
		req.SetContext(context.WithValue(req.Context(), exchangeKey{}, ex))
		tel.ReportDebug(report_resty_request, KV{"request", ex.id}, req.Method, req.URL)
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		ex := exchangeOf(res.Request)
		params := []any{
			KV{"request", ex.id},
			KV{"status", res.StatusCode()},
			KV{"elapsed", time.Since(ex.started).String()},
		}
		if res.IsError() {
			tel.ReportWarning(report_resty_response, append(params, res.Request.Method, res.Request.URL)...)
			return nil
		}
		tel.ReportDebug(report_resty_response, params...)
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		ex := exchangeOf(req)
		tel.ReportBroken(report_resty_response, err, KV{"request", ex.id}, req.Method, req.URL)
	})
}
