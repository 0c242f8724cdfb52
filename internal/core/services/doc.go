// Package services implements the driving ports.
//
// Gateway persists sanitised batches with local-file fallback, Pipeline binds
// one source adapter to the gateway, Runner runs registered pipelines and
// records their reports, and Scheduler runs pipelines on intervals.
package services
