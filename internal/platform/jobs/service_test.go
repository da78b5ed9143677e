package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type idRow struct{ id int64 }

func (r idRow) Scan(dest ...any) error {
	*dest[0].(*int64) = r.id
	return nil
}

type runLog struct {
	inserted []any
	updated  []any
}

func (l *runLog) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	l.updated = args
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (l *runLog) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (l *runLog) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	l.inserted = args
	return idRow{id: 42}
}

func TestRunNowRecordsRun(t *testing.T) {
	log := &runLog{}
	svc := New(log)

	details, err := svc.RunNow(context.Background(), JobContractReminders, func(context.Context) (any, error) {
		return map[string]int{"sent": 2}, nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if details.(map[string]int)["sent"] != 2 {
		t.Fatalf("unexpected details %v", details)
	}
	if log.inserted[0] != JobContractReminders || log.inserted[1] != "running" {
		t.Fatalf("unexpected insert args %v", log.inserted)
	}
	if log.updated[0] != "completed" || string(log.updated[1].([]byte)) != `{"sent":2}` || log.updated[2] != int64(42) {
		t.Fatalf("unexpected update args %v", log.updated)
	}
}

func TestRunNowMarksFailure(t *testing.T) {
	log := &runLog{}
	svc := New(log)
	boom := errors.New("boom")

	_, err := svc.RunNow(context.Background(), JobContractReminders, func(context.Context) (any, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected job error, got %v", err)
	}
	if log.updated[0] != "failed" {
		t.Fatalf("expected failed status, got %v", log.updated[0])
	}
}

func TestRunNowWithoutRunLog(t *testing.T) {
	svc := New(nil)
	details, err := svc.RunNow(context.Background(), "noop", func(context.Context) (any, error) { return "done", nil })
	if err != nil || details != "done" {
		t.Fatalf("unexpected result %v %v", details, err)
	}
}

func TestWorkerRunsEnqueuedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := New(nil)
	svc.Start(ctx)

	done := make(chan struct{})
	if !svc.Enqueue("ping", func(context.Context) (any, error) {
		close(done)
		return nil, nil
	}) {
		t.Fatal("expected job to be queued")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestEveryEnqueuesOnTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := New(nil)
	svc.Start(ctx)

	ticks := make(chan struct{}, 4)
	svc.Every(ctx, "tick", 5*time.Millisecond, func(context.Context) (any, error) {
		select {
		case ticks <- struct{}{}:
		default:
		}
		return nil, nil
	})
	for i := 0; i < 2; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d never ran", i)
		}
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	svc := &Service{queue: make(chan job, 1)}
	noop := func(context.Context) (any, error) { return nil, nil }
	if !svc.Enqueue("a", noop) {
		t.Fatal("expected first job to fit")
	}
	if svc.Enqueue("b", noop) {
		t.Fatal("expected full queue to drop the job")
	}
}
