package erp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"resultsync-backend/internal/components/telemetry"
	"resultsync-backend/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseUrl = "https://erp.cmr.edu.in"

	login_path     = "/login.htm"
	schedules_path = "/getExamScheduleStudentSide.json"
	results_path   = "/getStudentSideResultForCMR.json"

	report_client_list_schedules = "client.list-schedules"
	report_client_fetch_results  = "client.fetch-results"
)

var tracer = otel.Tracer("resultsync/scrapers/erp")

var (
	// ErrFetchFailed marks a listing that was answered with a non-2xx status.
	ErrFetchFailed = errors.New("portal responded with a non-success status")
)

type ClientOptions struct {
	BaseUrl string
	// per request timeout, defaults to 30 seconds
	Timeout time.Duration
	// number of retries on transport errors and 5xx responses
	RetryCount int
	// defaults to 2 requests per second
	RequestsPerSecond float64
	// when set, every exchange with the portal is written to it
	Dump restyutil.Output
}

// Client performs authenticated requests against the JSON endpoints of the portal.
type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) *Client {
	tel = telemetry.NewScopedAPI("erp_scraper", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("accept", "application/json, text/plain, */*")
	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")

	httpClient.SetRetryCount(opts.RetryCount)
	httpClient.SetRetryWaitTime(500 * time.Millisecond)
	httpClient.SetRetryMaxWaitTime(5 * time.Second)
	httpClient.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err != nil || res.StatusCode() >= 500
	})

	// max burst >= rps just means that no requests will be dropped
	burst := int(opts.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	if opts.Dump != nil {
		restyutil.Dump(httpClient, opts.Dump)
	}

	return &Client{http: httpClient, tel: tel}
}

func getListing[T any](
	ctx context.Context,
	c *Client,
	reportId string,
	session Session,
	path string,
	query url.Values,
) (FetchResult[T], error) {
	ctx, span := tracer.Start(ctx, reportId)
	defer span.End()

	req := c.http.R().
		SetContext(ctx).
		SetCookies(session.Cookies())
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}

	res, err := req.Get(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		c.tel.ReportBroken(reportId, fmt.Errorf("fetch: %w", err))
		return FetchResult[T]{}, err
	}
	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode()))

	out := FetchResult[T]{Status: res.StatusCode()}
	if out.Failed() {
		c.tel.ReportWarning(reportId, fmt.Errorf("%w: %s", ErrFetchFailed, res.Status()), query.Encode())
		return out, nil
	}

	err = json.Unmarshal(res.Body(), &out.Records)
	if err != nil {
		err = fmt.Errorf("json unmarshal: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unmarshal failed")
		c.tel.ReportBroken(reportId, err)
		return FetchResult[T]{Status: out.Status}, err
	}

	c.tel.ReportDebug(fmt.Sprintf("%s response", reportId), out.Status, len(out.Records))
	return out, nil
}

// ListSchedules lists the examination schedules available to the session.
func (c *Client) ListSchedules(ctx context.Context, session Session) (FetchResult[Schedule], error) {
	return getListing[Schedule](ctx, c, report_client_list_schedules, session, schedules_path, nil)
}

// FetchResults lists the subject results of one examination schedule.
func (c *Client) FetchResults(
	ctx context.Context,
	session Session,
	scheduleId, semesterId, syllabusId string,
) (FetchResult[SubjectResult], error) {
	query := url.Values{}
	query.Set("examScheduleId", scheduleId)
	query.Set("examSemesterId", semesterId)
	query.Set("universitySyllabusId", syllabusId)
	return getListing[SubjectResult](ctx, c, report_client_fetch_results, session, results_path, query)
}
