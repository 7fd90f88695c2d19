package engine

import (
	"context"
	"sync"

	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Engine runs the background modules of the api server next to the http
// listener. Modules talk to the request path through a shared event bus.
type Engine struct {
	// Module's lifetime is bound to Engine's lifetime. Each Module will be ran
	// in a separate routine.
	Modules []Module

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// In process event bus. A go channel is enough since the api server is the
	// only producer and consumer.
	EventBus *gochannel.GoChannel
}

// NewEventBus creates the go channel bus shared by handlers and modules.
func NewEventBus() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            100,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewStdLogger(false, false),
	)
}

func NewEngine(ctx context.Context, ms []Module, e *gochannel.GoChannel) *Engine {
	ctx, cancel := context.WithCancel(ctx)
	return &Engine{
		Modules:  ms,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		EventBus: e,
	}
}

// Run executes all modules and blocks until every module finished.
func (e *Engine) Run() {
	defer close(e.done)
	var wg sync.WaitGroup

	for idx := range e.Modules {
		wg.Add(1)
		go func(m Module) {
			defer wg.Done()
			Logger.Log.Infof("start engine module %s", m.Name())
			RunModuleWithGracefulRestart(e.ctx, m)
			Logger.Log.Infof("Module %s finished execution.", m.Name())
		}(e.Modules[idx])
	}

	// Block until all goroutine finished execution.
	wg.Wait()
}

// Shutdown cancels every module, closes the event bus and waits for Run to
// return. Must only be called after Run was started.
func (e *Engine) Shutdown() {
	Logger.Log.Infoln("shutting down engine modules")
	e.cancel()
	if err := e.EventBus.Close(); err != nil {
		Logger.Log.Errorln("fail to close event bus", err)
	}
	<-e.done
}
