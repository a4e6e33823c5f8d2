package model

import "github.com/floorguard/claims-backend/pkg/models"

type Storer interface {
	Store(models.Photo) error
}

type Retriever interface {
	Retrieve(sessionId string, sequenceId int) (*models.Photo, error)
}

type RWStorage interface {
	Storer
	Retriever
}
