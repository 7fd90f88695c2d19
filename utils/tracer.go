package utils

import (
	"github.com/Luismorlan/socialmux/utils/dotenv"
	"github.com/Luismorlan/socialmux/utils/flag"
	. "github.com/Luismorlan/socialmux/utils/log"
	"github.com/sirupsen/logrus"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func ddEnv() string {
	if dotenv.IsProdEnv() {
		return "production"
	}
	return "development"
}

// StartTracer starts the Datadog tracer, must be paired with CloseTracer.
func StartTracer() {
	tracer.Start(
		tracer.WithService(*flag.ServiceName),
		tracer.WithEnv(ddEnv()),
	)

	Log.WithFields(
		logrus.Fields{"env": ddEnv()},
	).Info("tracer initialized")
}

// Stop tracer, OK to be closed multiple times
func CloseTracer() {
	// Datadog tracer
	tracer.Stop()
}
