// Package scenario runs scripted allocator sessions described in YAML.
//
// A scenario is a list of steps. Each step is one allocator call (alloc,
// free, init) or a pure check, followed by optional assertions about the
// resulting block, the chain and any error:
//
//	name: reuse
//	mode: first-fit
//	steps:
//	  - {op: alloc, size: 9, as: p, expect: {size: 16}}
//	  - {op: free, ref: p}
//	  - {op: alloc, size: 8, expect: {reuses: p, grew: false}}
//
// Labels bind the handle returned by an alloc so later steps can free or
// inspect it. Labels survive init, which makes stale-handle checks
// expressible. The built-in demos replay the classic first-fit, next-fit
// and best-fit walkthroughs.
package scenario
