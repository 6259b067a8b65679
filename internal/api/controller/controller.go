package controller

import (
	"github.com/kisanshaktiai/market-ingestor/internal/service/ingest"
)

type Controller struct {
	service *ingest.Service
}

func NewController(service *ingest.Service) *Controller {
	return &Controller{service: service}
}
