// Package dendrite lets types declare, through member markers, which services
// they need from a dependency injection container.
//
// A subscriber declares services either by registering method markers
// (usually via code generated by cmd/dendrite from //dendrite:: annotations)
// or by tagging computed-read accessor fields with `service:"..."`. Collect
// turns those markers into an ordered ServiceMap the container consumes, and
// ContainerAware gives subscribers the setter the container calls back with.
package dendrite
