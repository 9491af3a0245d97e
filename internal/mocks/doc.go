// Package mocks provides shared mock implementations of the service
// interfaces for handler and middleware tests.
//
//	jwtService := &mocks.MockJWTService{Claims: &auth.Claims{UserID: userID}}
//
//	taskService := new(mocks.MockTaskService)
//	taskService.On("GetTask", mock.Anything, userID, groupID, taskID).Return(task, nil)
package mocks
