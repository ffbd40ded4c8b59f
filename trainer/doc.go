// Package trainer provides the training orchestration for autoencoder
// networks: minibatch schedules, epoch loops with validation, early
// stopping with best weight restore, training history and resuming from
// saved weights.
package trainer
