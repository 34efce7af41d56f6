//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

//
// The example shows the blob fallback: a document type whose content is
// externalized to S3 on write and resolved back on read, the table carries
// only the content reference.
//
//   go run . my-table-name my-bucket-name
//

package main

import (
	"context"
	"log"
	"os"

	"github.com/oproto/dynamap"
	"github.com/oproto/dynamap/service/ddb"
	"github.com/oproto/dynamap/service/s3"
)

type Document struct {
	PK      string `dynamodbav:"pk"`
	SK      string `dynamodbav:"sk"`
	Title   string `dynamodbav:"title,omitempty"`
	Content []byte `dynamodbav:"-"`
}

var documents = dynamap.Must(dynamap.New(dynamap.Meta[Document]{
	Type:          "Document",
	PartitionKey:  "pk",
	SortKey:       "sk",
	Discriminator: dynamap.BySortKey("DOC"),
}))

// documentHydrator externalizes Content through the blob storage provider.
type documentHydrator struct{}

func (documentHydrator) Encode(ctx context.Context, entity Document, store dynamap.BlobStorage) (dynamap.Item, error) {
	item, err := documents.Encode(entity)
	if err != nil {
		return nil, err
	}

	ref, err := dynamap.EncodeBlob(ctx, store, entity.Content)
	if err != nil {
		return nil, err
	}
	item["content"] = ref
	return item, nil
}

func (documentHydrator) Decode(ctx context.Context, items []dynamap.Item, store dynamap.BlobStorage) (Document, []dynamap.Diagnostic, error) {
	entity, diags, err := documents.DecodeMany(items)
	if err != nil {
		return Document{}, diags, err
	}

	for _, item := range items {
		if ref, has := item["content"]; has {
			data, err := dynamap.DecodeBlob(ctx, store, ref)
			if err != nil {
				return Document{}, diags, err
			}
			entity.Content = data
		}
	}
	return entity, diags, nil
}

func main() {
	table, bucket := os.Args[1], os.Args[2]

	dynamap.Register(nil, documents, documentHydrator{})

	blobs := s3.Must(s3.New(
		s3.WithBucket(bucket),
		s3.WithDefaultS3(),
	))

	db := ddb.Must(ddb.New(documents,
		ddb.WithTable(table),
		ddb.WithDefaultDynamoDB(),
		ddb.WithBlobs(blobs),
	))

	ctx := context.Background()

	assert(db.Put(ctx, Document{
		PK:      "doc:haiku",
		SK:      "DOC",
		Title:   "haiku",
		Content: []byte("an old silent pond\na frog jumps into the pond\nsplash! silence again"),
	}))

	doc, err := db.Get(ctx, "doc:haiku", "DOC")
	assert(err)

	log.Printf("==> %s\n%s\n", doc.Title, doc.Content)
}

func assert(err error) {
	if err != nil {
		panic(err)
	}
}
