// Package alerts implements the rule evaluation engine and webhook delivery
// for riskdash alerting. Rules are evaluated against every entry of a
// report; webhooks are delivered to Teams, Slack, or generic HTTP targets.
package alerts
