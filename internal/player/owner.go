package player

import (
	"github.com/sirupsen/logrus"
	"sync"
)

// ElementOwner holds the one playback element of the process.
type ElementOwner struct {
	lock sync.Mutex

	element       Element
	existing      Element
	factory       ElementFactory
	initialVolume float64
}

// NewElementOwner prepares an owner. existing, when not nil, is adopted instead of
// building a new element with factory.
func NewElementOwner(existing Element, factory ElementFactory, initialVolume float64) *ElementOwner {
	return &ElementOwner{
		existing:      existing,
		factory:       factory,
		initialVolume: initialVolume,
	}
}

// Initialize returns the held element, adopting or creating it on first call.
// It returns nil when no element could be built.
func (o *ElementOwner) Initialize() Element {
	o.lock.Lock()
	defer o.lock.Unlock()

	if o.element != nil {
		return o.element
	}

	if o.existing != nil {
		logrus.Debugf("Adopt existing playback element")
		o.element = o.existing
		o.existing = nil
		return o.element
	}

	if o.factory == nil {
		logrus.Warnf("No playback element factory")
		return nil
	}

	element, err := o.factory(o.initialVolume)
	if err != nil {
		logrus.Errorf("Unable to create playback element: %v", err)
		return nil
	}
	element.SetVolume(o.initialVolume)
	logrus.Infof("Playback element created")
	o.element = element

	return o.element
}

func (o *ElementOwner) Element() Element {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.element
}

// Release closes the held element. A later Initialize builds a new one.
func (o *ElementOwner) Release() error {
	o.lock.Lock()
	defer o.lock.Unlock()

	if o.element == nil {
		return nil
	}
	err := o.element.Close()
	o.element = nil
	return err
}
