package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/embedding"
	"ai-research-be/pkg/search/meili"
	"ai-research-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService indexes ingested papers: it chunks the content, embeds
// every chunk into the vector store and mirrors the paper into the keyword
// index.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	searchClient      *meili.Client
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	searchClient *meili.Client,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		searchClient:      searchClient,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedPaperMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing paper indexing for PaperId: %s", payload.PaperId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	paper, err := uow.PaperRepository().FindOne(ctx, specification.ByID{ID: payload.PaperId})
	if err != nil {
		log.Printf("[ERROR] Failed to get paper %s: %v", payload.PaperId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if paper == nil {
		log.Printf("[ERROR] Paper not found: %s", payload.PaperId)
		msg.Ack() // Paper deleted? Ack.
		return
	}

	// ChunkSize: 1500 chars (approx 375 tokens), Overlap: 200 chars
	chunks := utils.SplitText(paper.Content, 1500, 200)
	log.Printf("[INFO] Content split into %d chunks", len(chunks))

	var newEmbeddings []*entity.PaperEmbedding
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("[ERROR] Failed to generate embedding for chunk %d of paper %s: %v", i, payload.PaperId, err)
			msg.Nack()
			return
		}

		newEmbeddings = append(newEmbeddings, &entity.PaperEmbedding{
			Id:             uuid.New(),
			Document:       chunk,
			EmbeddingValue: res.Embedding.Values,
			PaperId:        paper.Id,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.PaperEmbeddingRepository().DeleteByPaperId(ctx, paper.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old embeddings: %v", err)
		msg.Nack()
		return
	}

	if len(newEmbeddings) > 0 {
		if err := uow.PaperEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			log.Printf("[ERROR] Failed to create bulk embeddings: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	// Mirror the paper into the keyword index
	doc := meili.Document{
		Id:       paper.Id.String(),
		Title:    paper.Title,
		Content:  paper.Content,
		Authors:  splitAuthors(paper.Authors),
		Metadata: paper.Metadata,
	}
	if err := cs.searchClient.UpsertDocuments(ctx, []meili.Document{doc}); err != nil {
		log.Printf("[ERROR] Failed to index paper %s in search: %v", payload.PaperId, err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Paper indexed: %d chunks for PaperId: %s", len(newEmbeddings), payload.PaperId)
	msg.Ack()
}
