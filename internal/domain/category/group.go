package category

import "sort"

// Bucket is one category cluster produced by Cluster.
type Bucket[T any] struct {
	Key   Key
	Order int
	Items []T
}

// Cluster groups items by key. Items keep their input order inside a
// bucket; a bucket's Order comes from the first item seen for it, and
// buckets are stably sorted by Order so equal orders keep first-seen order.
func Cluster[T any](items []T, key func(T) Key, order func(T) int) []Bucket[T] {
	index := make(map[Key]int)
	var buckets []Bucket[T]
	for _, it := range items {
		k := key(it)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, Bucket[T]{Key: k, Order: order(it)})
		}
		buckets[i].Items = append(buckets[i].Items, it)
	}
	sort.SliceStable(buckets, func(a, b int) bool { return buckets[a].Order < buckets[b].Order })
	return buckets
}
