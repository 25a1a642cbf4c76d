package interceptor

import "sync/atomic"

func storeAbandon(f *AbandonFlag) {
	atomic.StoreInt32(&f.v, 1)
}

func loadAbandon(f *AbandonFlag) bool {
	return atomic.LoadInt32(&f.v) != 0
}
