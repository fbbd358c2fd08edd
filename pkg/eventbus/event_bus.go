package eventbus

import (
	"reflect"

	"github.com/sirupsen/logrus"
)

// EventBus fans published arguments out to every subscribed handler whose
// signature accepts them. Handlers are plain functions matched by
// reflection, so modules can subscribe to domain event pointers without a
// shared registration enum.
type EventBus interface {
	Publish(args ...interface{})
	Subscribe(handler interface{})
	SubscribersCount() int
}

type publisher struct {
	log      *logrus.Logger
	handlers []reflect.Value
}

func NewEventPublisher(log *logrus.Logger) EventBus {
	return &publisher{log: log}
}

func (p *publisher) Subscribe(handler interface{}) {
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		panic("eventbus: handler must be a function")
	}
	p.handlers = append(p.handlers, v)
}

func (p *publisher) SubscribersCount() int {
	return len(p.handlers)
}

func (p *publisher) Publish(args ...interface{}) {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		in[i] = reflect.ValueOf(arg)
	}

	delivered := 0
	for _, handler := range p.handlers {
		if !accepts(handler.Type(), args) {
			continue
		}
		p.call(handler, in)
		delivered++
	}
	if delivered == 0 && p.log != nil && len(args) > 0 {
		p.log.Warnf("eventbus: no subscriber for %T", args[0])
	}
}

// call shields Publish from handler panics so a broken subscriber cannot
// take down the mutation that published the event.
func (p *publisher) call(handler reflect.Value, in []reflect.Value) {
	defer func() {
		if r := recover(); r != nil && p.log != nil {
			p.log.Errorf("eventbus: handler %s panicked: %v", handler.Type(), r)
		}
	}()
	handler.Call(in)
}

func accepts(t reflect.Type, args []interface{}) bool {
	if t.NumIn() != len(args) {
		return false
	}
	for i, arg := range args {
		param := t.In(i)
		if arg == nil {
			if param.Kind() != reflect.Interface && param.Kind() != reflect.Ptr {
				return false
			}
			continue
		}
		argType := reflect.TypeOf(arg)
		if param.Kind() == reflect.Interface {
			if !argType.Implements(param) {
				return false
			}
			continue
		}
		if !argType.AssignableTo(param) {
			return false
		}
	}
	return true
}
