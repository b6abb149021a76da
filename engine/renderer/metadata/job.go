package metadata

/**
 * @brief Describes a unit of work executed by the job system. Results
 * produced by OnStart are published to the results channel handed to
 * the completion callbacks.
 */
type JobTask struct {
	/** @brief Identifies the job in log output. */
	Name string
	/** @brief Invoked on a worker goroutine. Required. */
	OnStart func(params interface{}, results chan<- interface{}) error
	/** @brief Invoked when OnStart succeeds. Optional. */
	OnComplete func(results <-chan interface{})
	/** @brief Invoked when OnStart returns an error. Optional. */
	OnFailure func(results <-chan interface{})
	/** @brief Invoked last, regardless of outcome. Optional. */
	OnCompletionCallback func()
	/** @brief Data passed to OnStart. */
	InputParams interface{}
}
