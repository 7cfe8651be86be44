package models

import "time"

// Product представляет товар каталога, принадлежащий магазину.
type Product struct {
	ID          int       // Идентификатор товара
	OwnerUID    string    // UID администратора магазина
	Name        string    // Название товара
	Price       int       // Цена в минимальных единицах валюты
	Description string    // Описание для карточки товара
	CreatedAt   time.Time // Дата создания
	UpdatedAt   time.Time // Дата последнего изменения
}

// DummyProduct используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Product.
type DummyProduct struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Price       int    `json:"price" validate:"required,gt=0"`
	Description string `json:"description"`
}
