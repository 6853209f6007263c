package notify

import (
	"sync"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

func TestMultiFansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	var called int
	m := Multi{a, nil, b, NotifierFunc(func(n Notification) { called++ })}
	m.Notify(Error("boom", DefaultDuration))

	require.Equal(t, []Notification{{Message: "boom", Type: TypeError, Duration: DefaultDuration}}, a.Notifications())
	require.Equal(t, 1, b.Len())
	require.Equal(t, 1, called)
}

func TestRecorderConcurrent(t *testing.T) {
	r := &Recorder{}
	wg := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Notify(Error("x", DefaultDuration))
		}()
	}
	wg.Wait()
	require.Equal(t, 50, r.Len())
}

func TestRecorderReturnsCopy(t *testing.T) {
	r := &Recorder{}
	r.Notify(Error("first", DefaultDuration))
	items := r.Notifications()
	items[0].Message = "changed"
	require.Equal(t, "first", r.Notifications()[0].Message)
}

func TestNotificationJSONUsesMilliseconds(t *testing.T) {
	b, err := jsoniter.Marshal(Error("请求失败", DefaultDuration))
	require.NoError(t, err)
	require.JSONEq(t, `{"message":"请求失败","type":"error","duration":5000}`, string(b))

	var n Notification
	require.NoError(t, jsoniter.Unmarshal([]byte(`{"message":"x","type":"error","duration":1500}`), &n))
	require.Equal(t, Notification{Message: "x", Type: TypeError, Duration: 1500 * time.Millisecond}, n)
}
