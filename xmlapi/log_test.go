package xmlapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-panw"
	"github.com/tphakala/go-panw/xmlapi"
)

func TestLog(t *testing.T) {
	t.Run("queues job", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "log", r.PostForm.Get("type"))
			assert.Equal(t, "traffic", r.PostForm.Get("log-type"))
			assert.Equal(t, "(addr.src in 10.0.0.1)", r.PostForm.Get("query"))
			assert.Equal(t, "100", r.PostForm.Get("nlogs"))
			_, _ = w.Write([]byte(`<response status="success"><result><msg><line>query job enqueued with jobid 271</line></msg><job>271</job></result></response>`))
		})

		jobID, err := client.Log(context.Background(), &xmlapi.LogQuery{
			LogType: "traffic",
			Query:   "(addr.src in 10.0.0.1)",
			NLogs:   100,
		})
		require.NoError(t, err)
		assert.Equal(t, "271", jobID)
	})

	t.Run("missing log type rejected", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})
		_, err := client.Log(context.Background(), &xmlapi.LogQuery{})

		var verr *panw.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("missing job id in response", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<response status="success"><result/></response>`))
		})
		_, err := client.Log(context.Background(), &xmlapi.LogQuery{LogType: "traffic"})

		var status *panw.StatusError
		require.ErrorAs(t, err, &status)
	})
}

const logJobFinished = `<response status="success"><result>
  <job><id>271</id><status>FIN</status></job>
  <log><logs count="2" progress="100">
    <entry logid="7001"><type>TRAFFIC</type><src>10.0.0.1</src><dst>192.0.2.7</dst></entry>
    <entry logid="7002"><type>TRAFFIC</type><src>10.0.0.2</src><dst>192.0.2.8</dst></entry>
  </logs></log>
</result></response>`

func TestLogGet(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "log", r.PostForm.Get("type"))
		assert.Equal(t, "get", r.PostForm.Get("action"))
		assert.Equal(t, "271", r.PostForm.Get("job-id"))
		_, _ = w.Write([]byte(logJobFinished))
	})

	job, err := client.LogGet(context.Background(), "271")
	require.NoError(t, err)
	assert.True(t, job.Done())
	require.Len(t, job.Entries, 2)
	assert.Equal(t, "7001", job.Entries[0].LogID)
	assert.Equal(t, "10.0.0.1", job.Entries[0].Field("src"))
	assert.Equal(t, "192.0.2.8", job.Entries[1].Field("dst"))
	assert.Empty(t, job.Entries[0].Field("no-such-field"))
}

func TestLogWait(t *testing.T) {
	polls := 0
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls < 2 {
			_, _ = w.Write([]byte(`<response status="success"><result><job><id>271</id><status>ACT</status></job></result></response>`))
			return
		}
		_, _ = w.Write([]byte(logJobFinished))
	})

	job, err := client.LogWait(context.Background(), "271", time.Millisecond)
	require.NoError(t, err)
	assert.True(t, job.Done())
	assert.Len(t, job.Entries, 2)
}
