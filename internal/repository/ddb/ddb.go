// Package ddb implements the note repository using AWS DynamoDB.
// This is the only layer that should have knowledge of DynamoDB specifics.
//
// Single-table layout: PK = "USER#<userID>", SK = "NOTE#<TIER>#<noteID>".
// The tier lives in the sort key, so each logical collection is a contiguous
// key range and a cross-tier move is a delete and an insert against two
// different ranges of the same table. A global secondary index keyed on
// PK and NoteDate serves dated listings.
package ddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/violettance/second-brain-sub000/internal/domain"
	"github.com/violettance/second-brain-sub000/internal/repository"
	appErrors "github.com/violettance/second-brain-sub000/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// ddbNote represents the structure of a note item in DynamoDB.
type ddbNote struct {
	PK         string   `dynamodbav:"PK"`
	SK         string   `dynamodbav:"SK"`
	NoteID     string   `dynamodbav:"NoteID"`
	UserID     string   `dynamodbav:"UserID"`
	Title      string   `dynamodbav:"Title"`
	Content    string   `dynamodbav:"Content"`
	Tags       []string `dynamodbav:"Tags"`
	Tier       string   `dynamodbav:"Tier"`
	NoteDate   string   `dynamodbav:"NoteDate"`
	CreatedAt  string   `dynamodbav:"CreatedAt"`
	UpdatedAt  string   `dynamodbav:"UpdatedAt"`
	ArchivedAt string   `dynamodbav:"ArchivedAt,omitempty"`
}

// NoteRepository is the concrete implementation for DynamoDB.
type NoteRepository struct {
	dbClient *dynamodb.Client
	config   repository.Config
}

// NewNoteRepository creates a new instance of the DynamoDB repository.
func NewNoteRepository(dbClient *dynamodb.Client, config repository.Config) *NoteRepository {
	return &NoteRepository{
		dbClient: dbClient,
		config:   config.WithDefaults(),
	}
}

func pkFor(userID string) string {
	return fmt.Sprintf("USER#%s", userID)
}

func skFor(tier domain.Tier, noteID string) string {
	return fmt.Sprintf("NOTE#%s#%s", tierSegment(tier), noteID)
}

func skPrefixFor(tier domain.Tier) string {
	return fmt.Sprintf("NOTE#%s#", tierSegment(tier))
}

func tierSegment(tier domain.Tier) string {
	if tier == domain.TierLongTerm {
		return "LONG"
	}
	return "SHORT"
}

// CreateNote inserts a note item, refusing to overwrite an existing one.
func (r *NoteRepository) CreateNote(ctx context.Context, note *domain.Note) error {
	item, err := attributevalue.MarshalMap(toItem(note))
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal note item")
	}

	_, err = r.dbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.config.TableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(SK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return appErrors.NewValidation("note already exists")
		}
		return classify(err, "failed to put note item")
	}
	return nil
}

// UpdateNote overwrites the mutable fields of an existing note.
func (r *NoteRepository) UpdateNote(ctx context.Context, note *domain.Note) error {
	update := expression.Set(expression.Name("Title"), expression.Value(note.Title)).
		Set(expression.Name("Content"), expression.Value(note.Content)).
		Set(expression.Name("Tags"), expression.Value(note.Tags)).
		Set(expression.Name("NoteDate"), expression.Value(note.NoteDate)).
		Set(expression.Name("UpdatedAt"), expression.Value(note.UpdatedAt.Format(time.RFC3339)))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("SK"))).
		Build()
	if err != nil {
		return appErrors.Wrap(err, "failed to build update expression")
	}

	_, err = r.dbClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.config.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pkFor(note.UserID)},
			"SK": &types.AttributeValueMemberS{Value: skFor(note.Tier, note.ID)},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return appErrors.NewNotFound("note not found")
		}
		return classify(err, "failed to update note item")
	}
	return nil
}

// FindNoteByID retrieves a single note's item; (nil, nil) when absent.
func (r *NoteRepository) FindNoteByID(ctx context.Context, userID, noteID string, tier domain.Tier) (*domain.Note, error) {
	result, err := r.dbClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.config.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pkFor(userID)},
			"SK": &types.AttributeValueMemberS{Value: skFor(tier, noteID)},
		},
	})
	if err != nil {
		return nil, classify(err, "failed to get note item")
	}
	if result.Item == nil {
		return nil, nil
	}

	var item ddbNote
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal note item")
	}
	note := fromItem(item)
	return &note, nil
}

// buildListQuery builds the query expression for FindNotes and reports
// whether it targets the note-date index. Undated listings walk the tier's
// contiguous sort-key range on the table; dated listings query the index
// keyed on PK and NoteDate, narrowing to the tier with a filter on SK
// (a table key, so permitted in the index query's filter expression).
func buildListQuery(query repository.NoteQuery) (expression.Expression, bool, error) {
	useIndex := query.NoteDate != ""

	var keyCond expression.KeyConditionBuilder
	var filters []expression.ConditionBuilder
	if useIndex {
		keyCond = expression.Key("PK").Equal(expression.Value(pkFor(query.UserID))).
			And(expression.Key("NoteDate").Equal(expression.Value(query.NoteDate)))
		filters = append(filters, expression.Name("SK").BeginsWith(skPrefixFor(query.Tier)))
	} else {
		keyCond = expression.Key("PK").Equal(expression.Value(pkFor(query.UserID))).
			And(expression.Key("SK").BeginsWith(skPrefixFor(query.Tier)))
	}
	if query.Tier == domain.TierShortTerm && !query.IncludeArchived {
		filters = append(filters, expression.AttributeNotExists(expression.Name("ArchivedAt")))
	}

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if len(filters) > 0 {
		filter := filters[0]
		for _, f := range filters[1:] {
			filter = filter.And(f)
		}
		builder = builder.WithFilter(filter)
	}

	expr, err := builder.Build()
	return expr, useIndex, err
}

// FindNotes queries one tier's notes, using the note-date index for dated
// listings and a filter expression for archival.
func (r *NoteRepository) FindNotes(ctx context.Context, query repository.NoteQuery) ([]domain.Note, error) {
	expr, useIndex, err := buildListQuery(query)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build query expression")
	}

	var indexName *string
	if useIndex {
		indexName = aws.String(r.config.IndexName)
	}

	var notes []domain.Note
	var lastKey map[string]types.AttributeValue
	for {
		result, err := r.dbClient.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.config.TableName),
			IndexName:                 indexName,
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, classify(err, "failed to query notes")
		}

		for _, raw := range result.Items {
			var item ddbNote
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, appErrors.Wrap(err, "failed to unmarshal note item")
			}
			notes = append(notes, fromItem(item))
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}
	return notes, nil
}

// ArchiveNote stamps ArchivedAt on a short-term note item.
func (r *NoteRepository) ArchiveNote(ctx context.Context, userID, noteID string, archivedAt time.Time) error {
	stamp := archivedAt.Format(time.RFC3339)
	update := expression.Set(expression.Name("ArchivedAt"), expression.Value(stamp)).
		Set(expression.Name("UpdatedAt"), expression.Value(stamp))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("SK"))).
		Build()
	if err != nil {
		return appErrors.Wrap(err, "failed to build archive expression")
	}

	_, err = r.dbClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.config.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pkFor(userID)},
			"SK": &types.AttributeValueMemberS{Value: skFor(domain.TierShortTerm, noteID)},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return appErrors.NewNotFound("note not found")
		}
		return classify(err, "failed to archive note item")
	}
	return nil
}

// DeleteNote removes a note item, conditioned on it still existing. The
// condition makes DynamoDB the single point of truth when two movers race
// for the same note: exactly one delete succeeds.
func (r *NoteRepository) DeleteNote(ctx context.Context, userID, noteID string, tier domain.Tier) error {
	_, err := r.dbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.config.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pkFor(userID)},
			"SK": &types.AttributeValueMemberS{Value: skFor(tier, noteID)},
		},
		ConditionExpression: aws.String("attribute_exists(SK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return appErrors.NewNotFound("note not found")
		}
		return classify(err, "failed to delete note item")
	}
	return nil
}

// classify maps AWS service errors onto the application's error kinds.
func classify(err error, message string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return appErrors.NewBackingStore(
			fmt.Sprintf("%s (%s)", message, apiErr.ErrorCode()), err)
	}
	return appErrors.NewBackingStore(message, err)
}

func toItem(note *domain.Note) ddbNote {
	item := ddbNote{
		PK:        pkFor(note.UserID),
		SK:        skFor(note.Tier, note.ID),
		NoteID:    note.ID,
		UserID:    note.UserID,
		Title:     note.Title,
		Content:   note.Content,
		Tags:      note.Tags,
		Tier:      string(note.Tier),
		NoteDate:  note.NoteDate,
		CreatedAt: note.CreatedAt.Format(time.RFC3339),
		UpdatedAt: note.UpdatedAt.Format(time.RFC3339),
	}
	if note.ArchivedAt != nil {
		item.ArchivedAt = note.ArchivedAt.Format(time.RFC3339)
	}
	return item
}

func fromItem(item ddbNote) domain.Note {
	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, item.UpdatedAt)
	note := domain.Note{
		ID:        item.NoteID,
		UserID:    item.UserID,
		Title:     item.Title,
		Content:   item.Content,
		Tags:      item.Tags,
		Tier:      domain.Tier(item.Tier),
		NoteDate:  item.NoteDate,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if item.ArchivedAt != "" {
		if archivedAt, err := time.Parse(time.RFC3339, item.ArchivedAt); err == nil {
			note.ArchivedAt = &archivedAt
		}
	}
	return note
}
