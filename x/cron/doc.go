/*
Package cron implements delayed message execution.

A message scheduled with the Scheduler is stored in a queue ordered by its
execution time. At the beginning of every block the Ticker executes all
tasks that are due, each with the authentication conditions that were
given when the task was scheduled. Tasks scheduled for the current block
time are executed in the next block.

Every executed task leaves a TaskResult. A task whose message fails and
implements Bouncer has its bounce message scheduled, with the same
conditions, so that the origin of the failed message can react.
*/
package cron
