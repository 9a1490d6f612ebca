// Package region provides the growable memory areas that back a heap.
//
// A Region models a program break: it starts empty, grows monotonically by
// exactly the number of bytes requested, and can only be rolled back as a
// whole. Growth is the sole source of new backing memory for the allocator.
//
// # Implementations
//
//   - Memory: a byte slice with a fixed reservation. Growth moves the break
//     inside the reservation, so slices handed out earlier stay valid.
//   - Mapped: an anonymous mmap reservation (linux, darwin). Reset returns
//     the touched pages to the OS with madvise.
//   - Limited: wraps another region and denies growth past a byte budget or
//     when its hook says so. Used to simulate exhaustion deterministically.
//
// Growth failure is reported with ErrGrowDenied and is never retried here.
package region
