// Package demoworker supplies a runnable stand-in for the query-admission
// worker function: a ClickHouseWorker that issues the request's query
// directly through the clickhouse-go/v2 database/sql driver, and a
// FakeWorker that needs no external service for running the demo binary
// without a ClickHouse instance.
package demoworker
