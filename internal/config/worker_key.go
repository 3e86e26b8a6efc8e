package config

type WorkerKeyStruct struct {
	RecalcProgressQueue string
}

var WorkerKey = &WorkerKeyStruct{
	RecalcProgressQueue: "recalc_progress_queue",
}
