package erp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resultsync-backend/internal/components/telemetry"
	"resultsync-backend/internal/normalize"
	"resultsync-backend/lib/restyutil"

	"github.com/stretchr/testify/require"
)

const schedulesPayload = `[
	{
		"examScheduleId": 101,
		"semesterId": "1",
		"semesterName": "Semester 1",
		"ExamName": "Regular Nov 2021",
		"resultDeclarationDate": "2022/01/20",
		"universitySyllabusId": 7,
		"examScheduleTimetableId": 5001
	}
]`

const resultsPayload = `[
	{"seatNo": "21BBTCS001", "studentName": "Alice", "sgpa": "8.10", "subjectCode": "CS101", "InternalMarks": "-"},
	{"seatNo": "21BBTCS001", "studentName": "Alice", "sgpa": "8.10", "subjectCode": "CS102", "InternalMarks": 38}
]`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientOptions{
		BaseUrl:           server.URL,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 100,
	}, telemetry.NewRecorderAPI())
}

func TestListSchedules(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, schedules_path, r.URL.Path)
		cookie, err := r.Cookie("JSESSIONID")
		if err != nil || cookie.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(schedulesPayload))
	}))

	ctx := context.Background()

	res, err := client.ListSchedules(ctx, Session{"JSESSIONID": "abc"})
	require.NoError(t, err)
	require.False(t, res.Failed())
	require.Len(t, res.Records, 1)
	require.Equal(t, normalize.RawFrom("101"), res.Records[0].ExamScheduleId)
	require.Equal(t, normalize.RawFrom("Regular Nov 2021"), res.Records[0].ExamName)

	res, err = client.ListSchedules(ctx, Session{"JSESSIONID": "expired"})
	require.NoError(t, err)
	require.True(t, res.Failed())
	require.Equal(t, http.StatusUnauthorized, res.Status)
	require.Empty(t, res.Records)
}

func TestFetchResults(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, results_path, r.URL.Path)
		query := r.URL.Query()
		require.Equal(t, "101", query.Get("examScheduleId"))
		require.Equal(t, "1", query.Get("examSemesterId"))
		require.Equal(t, "7", query.Get("universitySyllabusId"))
		w.Write([]byte(resultsPayload))
	}))

	res, err := client.FetchResults(context.Background(), Session{}, "101", "1", "7")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.Status)
	require.Len(t, res.Records, 2)
	require.Equal(t, normalize.RawFrom("CS102"), res.Records[1].SubjectCode)
	require.False(t, normalize.Float(res.Records[0].InternalMarks).Valid)
	require.Equal(t, 38.0, normalize.Float(res.Records[1].InternalMarks).Float64)
}

func TestFetchEmptyListing(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	res, err := client.FetchResults(context.Background(), Session{}, "1", "1", "1")
	require.NoError(t, err)
	require.False(t, res.Failed())
	require.Empty(t, res.Records)
}

func TestFetchMalformedBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html")
		w.Write([]byte(`<html><body>please log in</body></html>`))
	}))

	_, err := client.ListSchedules(context.Background(), Session{})
	require.Error(t, err)
}

func TestSessionCookies(t *testing.T) {
	session := Session{"b": "2", "a": "1"}
	require.Equal(t, []string{"a", "b"}, session.Names())

	cookies := session.Cookies()
	require.Len(t, cookies, 2)
	require.Equal(t, "a", cookies[0].Name)
	require.Equal(t, "1", cookies[0].Value)
}

func TestClientDump(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(schedulesPayload))
	}))
	defer server.Close()

	out := restyutil.NewMemoryOutput()
	client := NewClient(ClientOptions{
		BaseUrl:           server.URL,
		RequestsPerSecond: 100,
		Dump:              out,
	}, telemetry.NewRecorderAPI())

	_, err := client.ListSchedules(context.Background(), Session{"JSESSIONID": "abc"})
	require.NoError(t, err)

	dumps := out.Dumps()
	require.Len(t, dumps, 1)
	for _, contents := range dumps {
		require.Contains(t, contents, "Semester 1")
		require.NotContains(t, contents, "abc")
	}
}
