// Package retention prunes terminal workflow runs past their retention
// window on a cron schedule. Only runs are pruned; the decision log is
// append-only and never touched by retention.
package retention
