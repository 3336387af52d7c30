/*
Package bench measures the performance and reliability of DNS resolvers by
issuing a batch of queries from a domain list against one or more target
servers under bounded concurrency. A run is described by the Benchmark struct
and executed with Benchmark.Run, which yields an immutable Summary of counts,
latency statistics and an error breakdown.
*/
package bench
