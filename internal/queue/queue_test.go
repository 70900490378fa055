package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/dialog"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSQS struct {
	mock.Mock
}

func (m *mockSQS) GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, _ ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sqs.GetQueueUrlOutput)
	return out, args.Error(1)
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sqs.SendMessageOutput)
	return out, args.Error(1)
}

func (m *mockSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sqs.ReceiveMessageOutput)
	return out, args.Error(1)
}

func (m *mockSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sqs.DeleteMessageOutput)
	return out, args.Error(1)
}

const queueURL = "https://sqs.us-east-1.amazonaws.com/123456789012/DiningQueue"

func expectURL(m *mockSQS) *mock.Call {
	return m.On("GetQueueUrl", mock.Anything, mock.MatchedBy(func(in *sqs.GetQueueUrlInput) bool {
		return aws.ToString(in.QueueName) == "DiningQueue"
	})).Return(&sqs.GetQueueUrlOutput{QueueUrl: aws.String(queueURL)}, nil)
}

func sampleRequest() DiningRequest {
	return DiningRequest{
		RequestID:      NewRequestID().String(),
		Location:       "Manhattan",
		Cuisine:        "Italian",
		Date:           "2026-03-02",
		Time:           "19:30",
		NumberOfPeople: "4",
		Email:          "x@y.com",
		RequestedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFromSlots(t *testing.T) {
	slots := dialog.SlotSet{
		Location:       aws.String("Manhattan"),
		Cuisine:        aws.String("Italian"),
		Date:           aws.String("2026-03-02"),
		Time:           aws.String("19:30"),
		NumberOfPeople: aws.String("4"),
		Email:          aws.String("x@y.com"),
	}
	at := time.Date(2026, 3, 1, 7, 0, 0, 0, time.FixedZone("EST", -5*3600))

	req := FromSlots(slots, at)

	assert.Equal(t, "Italian", req.Cuisine)
	assert.Equal(t, "x@y.com", req.Email)
	assert.Equal(t, time.UTC, req.RequestedAt.Location())
	assert.True(t, strings.HasPrefix(req.RequestID, RequestIDPrefix+"-"))
}

func TestEncodeDecode(t *testing.T) {
	req := sampleRequest()
	body, err := Encode(req)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &fields))
	assert.ElementsMatch(t,
		[]string{"request_id", "location", "cuisine", "date", "time", "number_of_people", "email", "requested_at"},
		keys(fields))

	decoded, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, req, decoded)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestDecodeMalformed(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"legacy python repr", `{'Location': 'Manhattan', 'Cuisine': 'thai'}`},
		{"not json", "hello"},
		{"trailing data", `{"location":"a","cuisine":"b","date":"c","time":"d","number_of_people":"1","email":"e"} {}`},
		{"missing fields", `{"location":"Manhattan","cuisine":"thai"}`},
		{"blank field", `{"location":"a","cuisine":" ","date":"c","time":"d","number_of_people":"1","email":"e"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.body)
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}

func TestNewRequestID(t *testing.T) {
	id := NewRequestID()
	assert.True(t, strings.HasPrefix(id.String(), "dnr-"))

	assert.Equal(t, "dnr-"+id.UUID.String(), id.String())
	assert.NotEqual(t, id.String(), NewRequestID().String())
}

func TestPublish(t *testing.T) {
	client := &mockSQS{}
	expectURL(client).Once()
	client.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
		attr := in.MessageAttributes[SchemaVersionAttribute]
		return aws.ToString(in.QueueUrl) == queueURL &&
			strings.Contains(aws.ToString(in.MessageBody), `"cuisine":"Italian"`) &&
			aws.ToString(attr.StringValue) == SchemaVersion
	})).Return(&sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil).Twice()

	q := New(client, "DiningQueue")
	for i := 0; i < 2; i++ {
		id, err := q.Publish(context.Background(), sampleRequest())
		require.NoError(t, err)
		assert.Equal(t, "msg-1", id)
	}

	client.AssertExpectations(t)
}

func TestURLLookupFailureIsRetried(t *testing.T) {
	client := &mockSQS{}
	client.On("GetQueueUrl", mock.Anything, mock.Anything).
		Return(nil, errors.New("throttled")).Once()
	expectURL(client).Once()

	q := New(client, "DiningQueue")
	_, err := q.URL(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get url of queue DiningQueue")

	url, err := q.URL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, queueURL, url)
	client.AssertExpectations(t)
}

func TestReceive(t *testing.T) {
	client := &mockSQS{}
	expectURL(client)
	client.On("ReceiveMessage", mock.Anything, mock.MatchedBy(func(in *sqs.ReceiveMessageInput) bool {
		return in.MaxNumberOfMessages == 10 && in.WaitTimeSeconds == 20 && in.VisibilityTimeout == 60
	})).Return(&sqs.ReceiveMessageOutput{Messages: []types.Message{{
		MessageId:     aws.String("m-1"),
		ReceiptHandle: aws.String("rh-1"),
		Body:          aws.String("{}"),
		Attributes:    map[string]string{"ApproximateReceiveCount": "3"},
		MessageAttributes: map[string]types.MessageAttributeValue{
			SchemaVersionAttribute: {DataType: aws.String("String"), StringValue: aws.String("1")},
		},
	}}}, nil)

	q := New(client, "DiningQueue")
	msgs, err := q.Receive(context.Background(), ReceiveOptions{
		MaxMessages:       10,
		WaitTime:          20 * time.Second,
		VisibilityTimeout: time.Minute,
	})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, Message{ID: "m-1", ReceiptHandle: "rh-1", Body: "{}", SchemaVersion: "1", ReceiveCount: 3}, msgs[0])
}

func TestDelete(t *testing.T) {
	client := &mockSQS{}
	expectURL(client)
	client.On("DeleteMessage", mock.Anything, mock.MatchedBy(func(in *sqs.DeleteMessageInput) bool {
		return aws.ToString(in.ReceiptHandle) == "rh-1"
	})).Return(&sqs.DeleteMessageOutput{}, nil).Once()
	client.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil, errors.New("gone"))

	q := New(client, "DiningQueue")
	require.NoError(t, q.Delete(context.Background(), "rh-1"))
	assert.Error(t, q.Delete(context.Background(), "rh-2"))
}
