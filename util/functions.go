package util

import (
	"cmp"
	"runtime"
	"sort"

	"github.com/golang/glog"
)

func LogMemory() {
	s := &runtime.MemStats{}
	runtime.ReadMemStats(s)
	glog.Infoln("*** Memory Info ***")
	glog.Infoln("Bytes Allocated InUse:\t", s.Alloc)
	glog.Infoln("Mallocs:\t\t", s.Mallocs)
	glog.Infoln("Frees:\t\t\t", s.Frees)
	glog.Infoln("Heap Allocated InUse:\t", s.HeapAlloc)
	glog.Infoln("Heap Objects:\t\t", s.HeapObjects)
	glog.Infoln("*** ***")
}

// TopNDatum is a key with its count.
type TopNDatum[K cmp.Ordered] struct {
	S K
	N int
}

// TopNData sorts by descending count, ties broken by ascending key.
type TopNData[K cmp.Ordered] []TopNDatum[K]

func (arr TopNData[K]) Len() int {
	return len(arr)
}

func (arr TopNData[K]) Swap(a, b int) {
	arr[a], arr[b] = arr[b], arr[a]
}

func (arr TopNData[K]) Less(a, b int) bool {
	if arr[a].N != arr[b].N {
		return arr[a].N > arr[b].N
	}
	return arr[a].S < arr[b].S
}

// GetTopN returns the n most frequent keys of m; n < 0 returns all keys.
func GetTopN[K cmp.Ordered](m map[K]int, n int) TopNData[K] {
	data := make(TopNData[K], 0, len(m))
	for k, v := range m {
		data = append(data, TopNDatum[K]{k, v})
	}
	sort.Sort(data)
	if n >= 0 && n < len(data) {
		data = data[:n]
	}
	return data
}

// Keys returns the keys in order.
func (arr TopNData[K]) Keys() []K {
	retval := make([]K, len(arr))
	for i, d := range arr {
		retval[i] = d.S
	}
	return retval
}
