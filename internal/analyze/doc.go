// Package analyze composes the lower layers into full investigations.
//
// Three services live here. Service plans alias and domain
// investigations: it validates the target, selects query templates by
// priority, runs the fan-out through an aggregator, and attaches
// follow-up recommendations to the finished report. ExposureService
// summarizes breach-database findings for accounts and passwords,
// including a combined check that reduces both onto one overall risk.
// Manager dispatches external analysis scripts per target kind and
// tracks asynchronous runs by task id.
package analyze
