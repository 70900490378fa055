package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	mock.Mock
}

func (m *mockSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sesv2.SendEmailOutput)
	return out, args.Error(1)
}

func TestSend(t *testing.T) {
	ses := &mockSES{}
	var captured *sesv2.SendEmailInput
	ses.On("SendEmail", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*sesv2.SendEmailInput) }).
		Return(&sesv2.SendEmailOutput{MessageId: aws.String("ses-1")}, nil)

	m := New(ses, "concierge@example.com", "operator@example.com")
	id, err := m.Send(context.Background(), Email{To: "x@y.com", Subject: "Your Thai dining suggestions", Body: "Enjoy your meal!"})
	require.NoError(t, err)
	assert.Equal(t, "ses-1", id)

	require.NotNil(t, captured)
	assert.Equal(t, "concierge@example.com", aws.ToString(captured.FromEmailAddress))
	assert.Equal(t, []string{"x@y.com"}, captured.Destination.ToAddresses)
	assert.Equal(t, []string{"operator@example.com"}, captured.Destination.CcAddresses)
	assert.Equal(t, "Your Thai dining suggestions", aws.ToString(captured.Content.Simple.Subject.Data))
	assert.Equal(t, "Enjoy your meal!", aws.ToString(captured.Content.Simple.Body.Text.Data))
}

func TestSendCopiesOperatorEvenWhenRecipient(t *testing.T) {
	ses := &mockSES{}
	ses.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *sesv2.SendEmailInput) bool {
		return len(in.Destination.CcAddresses) == 1 && in.Destination.CcAddresses[0] == "operator@example.com"
	})).Return(&sesv2.SendEmailOutput{MessageId: aws.String("ses-2")}, nil).Once()

	_, err := New(ses, "concierge@example.com", "operator@example.com").
		Send(context.Background(), Email{To: "operator@example.com"})
	require.NoError(t, err)
	ses.AssertExpectations(t)
}

func TestSendWithoutOperator(t *testing.T) {
	ses := &mockSES{}
	ses.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *sesv2.SendEmailInput) bool {
		return len(in.Destination.CcAddresses) == 0
	})).Return(&sesv2.SendEmailOutput{MessageId: aws.String("ses-3")}, nil).Once()

	_, err := New(ses, "concierge@example.com", "").Send(context.Background(), Email{To: "x@y.com"})
	require.NoError(t, err)
	ses.AssertExpectations(t)
}

func TestSendFailure(t *testing.T) {
	ses := &mockSES{}
	ses.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("MessageRejected"))

	_, err := New(ses, "concierge@example.com", "").Send(context.Background(), Email{To: "x@y.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email")
}
