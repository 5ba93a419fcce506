// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

/*
Package metrics provides optional Prometheus instrumentation for netherd's
background daemons. Metrics are deliberately decoupled from the daemon
machinery: a daemon accepts a [DaemonMetrics] through an option and all
recording methods are nil-safe, so the instrumentation can be left out
entirely without sprinkling nil checks over the hot path call sites.
*/
package metrics
