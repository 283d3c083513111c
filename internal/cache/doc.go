// Package cache provides the LRU cache the frame store keeps decoded frames in.
//
// Entries are weighed by a caller-supplied cost function (for frames: the
// size of the pixel buffer in bytes), and the least recently used entries
// are evicted once the total cost exceeds the limit.
//
//	c := cache.New[string, *image.NRGBA](64<<20, func(img *image.NRGBA) int64 {
//		return int64(len(img.Pix))
//	})
//	c.Set(path, img)
//	img, ok := c.Get(path)
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
