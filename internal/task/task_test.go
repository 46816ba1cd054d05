package task

import (
	"errors"
	"testing"
)

func TestTaskCompletesWithoutSuspending(t *testing.T) {
	tk := Run(func(h *Handle) (int, error) {
		return 42, nil
	})

	if status := tk.Step(); status != StatusFinished {
		t.Fatalf("expected immediate completion, got status %v", status)
	}

	v, err := tk.Result()
	if err != nil || v != 42 {
		t.Errorf("expected (42, nil), got (%d, %v)", v, err)
	}
}

func TestTaskSuspendsAndResumes(t *testing.T) {
	fut := NewFuture[string]()

	tk := Run(func(h *Handle) (string, error) {
		v, err := Await(h, fut)
		if err != nil {
			return "", err
		}

		return "got:" + v, nil
	})

	if status := tk.Step(); status != StatusSuspended {
		t.Fatalf("expected the task to suspend, got %v", status)
	}

	pending, ok := tk.Pending().(*Future[string])
	if !ok || pending != fut {
		t.Fatalf("expected Pending to expose the awaited future")
	}

	fut.Complete("hello", nil)

	if status := tk.Resume(); status != StatusFinished {
		t.Fatalf("expected completion after resume, got %v", status)
	}

	v, err := tk.Result()
	if err != nil || v != "got:hello" {
		t.Errorf("expected (\"got:hello\", nil), got (%q, %v)", v, err)
	}
}

func TestTaskPropagatesFutureError(t *testing.T) {
	fut := NewFuture[int]()
	wantErr := errors.New("fetch failed")

	tk := Run(func(h *Handle) (int, error) {
		return Await(h, fut)
	})

	tk.Step()
	fut.Complete(0, wantErr)
	tk.Resume()

	_, err := tk.Result()
	if err != wantErr {
		t.Errorf("expected the future's error to propagate, got %v", err)
	}
}

func TestCompletedFutureNeverSuspends(t *testing.T) {
	fut := Completed(7, nil)

	tk := Run(func(h *Handle) (int, error) {
		return Await(h, fut)
	})

	if status := tk.Step(); status != StatusFinished {
		t.Fatalf("expected an already-completed future to resolve without suspending, got %v", status)
	}
}

func TestFutureCompleteTwicePanics(t *testing.T) {
	fut := NewFuture[int]()
	fut.Complete(1, nil)

	defer func() {
		if recover() == nil {
			t.Errorf("expected completing a future twice to panic")
		}
	}()

	fut.Complete(2, nil)
}

func TestMultipleSuspensionsInSequence(t *testing.T) {
	futA := NewFuture[int]()
	futB := NewFuture[int]()

	tk := Run(func(h *Handle) (int, error) {
		a, err := Await(h, futA)
		if err != nil {
			return 0, err
		}

		b, err := Await(h, futB)
		if err != nil {
			return 0, err
		}

		return a + b, nil
	})

	if status := tk.Step(); status != StatusSuspended {
		t.Fatalf("expected first suspension, got %v", status)
	}

	futA.Complete(3, nil)

	if status := tk.Resume(); status != StatusSuspended {
		t.Fatalf("expected second suspension, got %v", status)
	}

	futB.Complete(4, nil)

	if status := tk.Resume(); status != StatusFinished {
		t.Fatalf("expected completion, got %v", status)
	}

	v, _ := tk.Result()
	if v != 7 {
		t.Errorf("expected 3+4=7, got %d", v)
	}
}
