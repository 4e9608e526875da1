package util

import (
	"context"
	"reflect"
	"testing"
	"time"
)

// AwaitEvent runs trigger, then blocks until em emits an event deeply
// equal to want, failing the test after one second.
func AwaitEvent(t *testing.T, em *Emitter, trigger func(), want interface{}) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := em.Listen(ctx)

	trigger()
	for {
		select {
		case msg := <-ch:
			if reflect.DeepEqual(msg, want) {
				return
			}
		case <-time.After(time.Second):
			t.Fatalf("event %#v was not emitted", want)
		}
	}
}
